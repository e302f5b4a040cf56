package fixture

import (
	"embed"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
)

//go:embed data
var seedFS embed.FS

// Resource names the fixture collections.
const (
	ResourceProducts = "products"
	ResourceOrders   = "orders"
	ResourceVisits   = "visits"
	ResourceFarmers  = "farmers"
)

// MissPolicy controls what a single-entity lookup does when the id is not
// in the collection.
type MissPolicy string

const (
	// MissNotFound reports absence as absence. The default.
	MissNotFound MissPolicy = "notFound"
	// MissFirstRecord substitutes the first record of the collection.
	// Demo flows rely on every detail screen resolving to something, so
	// the leniency is available behind an explicit flag rather than
	// hard-coded.
	MissFirstRecord MissPolicy = "firstRecord"
)

// Record is a single fixture entity. Kept schemaless so request bodies
// merge into entities the way the backend would apply them.
type Record = map[string]any

// Page is the collection wrapper every list endpoint returns.
type Page struct {
	Items []Record `json:"items"`
	Total int      `json:"total"`
	Page  int      `json:"page"`
	Limit int      `json:"limit"`
}

// Catalog holds the in-memory fixture collections. Mutations live for the
// duration of the process and are never persisted; the catalog is
// deliberately separate from the session identity slot.
type Catalog struct {
	mu          sync.Mutex
	collections map[string][]Record
	now         func() time.Time
}

// NewCatalog loads the embedded seed data.
func NewCatalog() (*Catalog, error) {
	c := &Catalog{
		collections: map[string][]Record{},
		now:         time.Now,
	}

	for _, resource := range []string{ResourceProducts, ResourceOrders, ResourceVisits, ResourceFarmers} {
		raw, err := seedFS.ReadFile("data/" + resource + ".json")
		if err != nil {
			return nil, fmt.Errorf("fixture: missing seed collection %q: %w", resource, err)
		}

		var records []Record
		if err := json.Unmarshal(raw, &records); err != nil {
			return nil, fmt.Errorf("fixture: invalid seed collection %q: %w", resource, err)
		}
		c.collections[resource] = records
	}

	return c, nil
}

// List returns one page of the collection. Page numbers start at 1.
func (c *Catalog) List(resource string, page, limit int) Page {
	c.mu.Lock()
	defer c.mu.Unlock()

	records := c.collections[resource]
	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = defaultPageLimit
	}

	start := (page - 1) * limit
	end := start + limit
	if start > len(records) {
		start = len(records)
	}
	if end > len(records) {
		end = len(records)
	}

	items := make([]Record, end-start)
	for i, record := range records[start:end] {
		items[i] = cloneRecord(record)
	}

	return Page{
		Items: items,
		Total: len(records),
		Page:  page,
		Limit: limit,
	}
}

// Find looks a record up by id. With MissFirstRecord a miss on a non-empty
// collection yields the first record instead of absence.
func (c *Catalog) Find(resource, id string, policy MissPolicy) (Record, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	records := c.collections[resource]
	for _, record := range records {
		if recordID(record) == id {
			return cloneRecord(record), true
		}
	}

	if policy == MissFirstRecord && len(records) > 0 {
		return cloneRecord(records[0]), true
	}
	return nil, false
}

// Create synthesizes a new entity: the request body merged with a
// generated id, timestamps, and a default status when the body has none.
func (c *Catalog) Create(resource string, body Record) Record {
	c.mu.Lock()
	defer c.mu.Unlock()

	record := Record{}
	for k, v := range body {
		record[k] = v
	}

	now := c.now().UTC().Format(time.RFC3339)
	record["id"] = uuid.NewString()
	record["created_at"] = now
	record["updated_at"] = now
	if _, ok := record["status"]; !ok {
		record["status"] = defaultStatus(resource)
	}

	c.collections[resource] = append(c.collections[resource], record)
	return cloneRecord(record)
}

// Update merges the request body into an existing entity and stamps an
// updated-at time. A miss is a miss; the lenient policy is read-only.
func (c *Catalog) Update(resource, id string, body Record) (Record, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	for _, record := range c.collections[resource] {
		if recordID(record) != id {
			continue
		}
		for k, v := range body {
			record[k] = v
		}
		record["updated_at"] = c.now().UTC().Format(time.RFC3339)
		return cloneRecord(record), true
	}
	return nil, false
}

func recordID(record Record) string {
	raw, ok := record["id"]
	if !ok {
		return ""
	}
	id, _ := raw.(string)
	return id
}

func defaultStatus(resource string) string {
	switch resource {
	case ResourceOrders:
		return "pending"
	case ResourceVisits:
		return "requested"
	default:
		return "active"
	}
}

func cloneRecord(record Record) Record {
	out := make(Record, len(record))
	for k, v := range record {
		out[k] = v
	}
	return out
}
