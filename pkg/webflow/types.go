package webflow

import (
	"slices"
	"time"
)

// Platform-managed item fields.
const (
	FieldID       = "_id"
	FieldName     = "name"
	FieldSlug     = "slug"
	FieldArchived = "_archived"
	FieldDraft    = "_draft"
)

// Item is one record of a collection: field name to value, including the
// platform-managed _archived and _draft flags and the name used for lookups.
type Item map[string]any

// ID returns the item's _id, or "" when absent.
func (i Item) ID() string {
	return i.stringField(FieldID)
}

// Name returns the item's name, or "" when absent or not a string.
func (i Item) Name() string {
	return i.stringField(FieldName)
}

// Slug returns the item's slug.
func (i Item) Slug() string {
	return i.stringField(FieldSlug)
}

// Archived reports the _archived flag.
func (i Item) Archived() bool {
	return i.boolField(FieldArchived)
}

// Draft reports the _draft flag.
func (i Item) Draft() bool {
	return i.boolField(FieldDraft)
}

func (i Item) stringField(key string) string {
	value, _ := i[key].(string)

	return value
}

func (i Item) boolField(key string) bool {
	value, _ := i[key].(bool)

	return value
}

// ItemsPage is one page of a collection item listing.
type ItemsPage struct {
	Items  []Item `json:"items"  yaml:"items"`
	Count  int    `json:"count"  yaml:"count"`
	Limit  int    `json:"limit"  yaml:"limit"`
	Offset int    `json:"offset" yaml:"offset"`
	Total  int    `json:"total"  yaml:"total"`
}

// Pages returns ceil(Total / Limit). A page without a limit counts as one.
func (p *ItemsPage) Pages() int {
	if p.Limit <= 0 {
		if p.Total > 0 {
			return 1
		}

		return 0
	}

	return (p.Total + p.Limit - 1) / p.Limit
}

// ListOptions selects a page of items. Zero values select the defaults
// (offset 0, limit 100).
type ListOptions struct {
	Offset int
	Limit  int
}

// ItemFields is the request body of item writes.
type ItemFields struct {
	Fields map[string]any `json:"fields"`
}

// Info describes the authorization behind the configured token (/info).
type Info struct {
	ID          string       `json:"_id"         yaml:"id"`
	CreatedOn   time.Time    `json:"createdOn"   yaml:"created_on"`
	GrantType   string       `json:"grantType"   yaml:"grant_type"`
	LastUsed    *time.Time   `json:"lastUsed"    yaml:"last_used,omitempty"`
	Sites       []string     `json:"sites"       yaml:"sites"`
	Orgs        []string     `json:"orgs"        yaml:"orgs"`
	Users       []string     `json:"users"       yaml:"users"`
	RateLimit   int          `json:"rateLimit"   yaml:"rate_limit"`
	Status      string       `json:"status"      yaml:"status"`
	Application *Application `json:"application" yaml:"application,omitempty"`
}

// Application is the OAuth application an authorization belongs to.
type Application struct {
	ID          string `json:"_id"         yaml:"id"`
	Description string `json:"description" yaml:"description"`
	Homepage    string `json:"homepage"    yaml:"homepage"`
	Name        string `json:"name"        yaml:"name"`
	Owner       string `json:"owner"       yaml:"owner"`
	OwnerType   string `json:"ownerType"   yaml:"owner_type"`
}

// Site represents a Webflow site.
type Site struct {
	ID            string     `json:"_id"           yaml:"id"`
	CreatedOn     time.Time  `json:"createdOn"     yaml:"created_on"`
	Name          string     `json:"name"          yaml:"name"`
	ShortName     string     `json:"shortName"     yaml:"short_name"`
	LastPublished *time.Time `json:"lastPublished" yaml:"last_published,omitempty"`
	PreviewURL    string     `json:"previewUrl"    yaml:"preview_url"`
	Timezone      string     `json:"timezone"      yaml:"timezone"`
	Database      string     `json:"database"      yaml:"database"`
}

// Domain is a custom domain attached to a site.
type Domain struct {
	ID   string `json:"_id"  yaml:"id"`
	Name string `json:"name" yaml:"name"`
}

// PublishRequest is the body of a site publish.
type PublishRequest struct {
	Domains []string `json:"domains"`
}

// PublishResult reports whether a publish was queued.
type PublishResult struct {
	Queued bool `json:"queued" yaml:"queued"`
}

// DeleteResult reports how many resources a delete removed.
type DeleteResult struct {
	Deleted int `json:"deleted" yaml:"deleted"`
}

// Collection is a named group of structurally similar items.
type Collection struct {
	ID           string            `json:"_id"          yaml:"id"`
	LastUpdated  *time.Time        `json:"lastUpdated"  yaml:"last_updated,omitempty"`
	CreatedOn    time.Time         `json:"createdOn"    yaml:"created_on"`
	Name         string            `json:"name"         yaml:"name"`
	Slug         string            `json:"slug"         yaml:"slug"`
	SingularName string            `json:"singularName" yaml:"singular_name"`
	Fields       []CollectionField `json:"fields,omitempty" yaml:"fields,omitempty"`
}

// CollectionField describes one field of a collection schema.
type CollectionField struct {
	ID          string         `json:"id"                    yaml:"id"`
	Slug        string         `json:"slug"                  yaml:"slug"`
	Name        string         `json:"name"                  yaml:"name"`
	Type        string         `json:"type"                  yaml:"type"`
	Archived    bool           `json:"archived"              yaml:"archived"`
	Editable    bool           `json:"editable"              yaml:"editable"`
	Required    bool           `json:"required"              yaml:"required"`
	Validations map[string]any `json:"validations,omitempty" yaml:"validations,omitempty"`
}

// TriggerType is the event kind a webhook subscribes to.
type TriggerType string

// Supported webhook trigger types.
const (
	TriggerFormSubmission        TriggerType = "form_submission"
	TriggerSitePublish           TriggerType = "site_publish"
	TriggerEcommNewOrder         TriggerType = "ecomm_new_order"
	TriggerEcommOrderChanged     TriggerType = "ecomm_order_changed"
	TriggerEcommInventoryChanged TriggerType = "ecomm_inventory_changed"
	TriggerCollectionItemCreated TriggerType = "collection_item_created"
	TriggerCollectionItemChanged TriggerType = "collection_item_changed"
	TriggerCollectionItemDeleted TriggerType = "collection_item_delete"
)

// DefaultTriggerType is used when a webhook is created without one.
const DefaultTriggerType = TriggerFormSubmission

// TriggerTypes lists the accepted trigger types in documentation order.
func TriggerTypes() []TriggerType {
	return []TriggerType{
		TriggerFormSubmission,
		TriggerSitePublish,
		TriggerEcommNewOrder,
		TriggerEcommOrderChanged,
		TriggerEcommInventoryChanged,
		TriggerCollectionItemCreated,
		TriggerCollectionItemChanged,
		TriggerCollectionItemDeleted,
	}
}

// Valid reports whether t is one of TriggerTypes.
func (t TriggerType) Valid() bool {
	return slices.Contains(TriggerTypes(), t)
}

// ValidateTriggerType returns an InvalidArgumentError listing the accepted
// values when t is not one of them.
func ValidateTriggerType(t TriggerType) error {
	if t.Valid() {
		return nil
	}

	allowed := make([]string, 0, len(TriggerTypes()))
	for _, candidate := range TriggerTypes() {
		allowed = append(allowed, string(candidate))
	}

	return &InvalidArgumentError{
		Argument: "trigger type",
		Value:    string(t),
		Allowed:  allowed,
	}
}

// Webhook is a registration that notifies a URL when an event fires.
type Webhook struct {
	ID          string      `json:"_id"              yaml:"id"`
	TriggerType TriggerType `json:"triggerType"      yaml:"trigger_type"`
	TriggerID   string      `json:"triggerId"        yaml:"trigger_id"`
	Site        string      `json:"site"             yaml:"site"`
	Filter      any         `json:"filter,omitempty" yaml:"filter,omitempty"`
	URL         string      `json:"url"              yaml:"url"`
	CreatedOn   time.Time   `json:"createdOn"        yaml:"created_on"`
	LastUsed    *time.Time  `json:"lastUsed"         yaml:"last_used,omitempty"`
}
