package webflow

import "maps"

// MergeDefaults returns a new map holding every key of defaults, overwritten
// by every key of overrides. Overrides always win, including explicit nil
// values. Neither argument is modified.
func MergeDefaults(defaults, overrides map[string]any) map[string]any {
	merged := make(map[string]any, len(defaults)+len(overrides))

	maps.Copy(merged, defaults)
	maps.Copy(merged, overrides)

	return merged
}

// ItemDefaults returns the platform-managed flags every written item carries
// unless the caller sets them.
func ItemDefaults() map[string]any {
	return map[string]any{
		FieldArchived: false,
		FieldDraft:    false,
	}
}

// WebhookDefaults returns the body defaults for webhook registration.
func WebhookDefaults() map[string]any {
	return map[string]any{
		"triggerType": string(DefaultTriggerType),
		"url":         "",
		"filter":      "",
	}
}
