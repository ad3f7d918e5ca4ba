// AngelaMos | 2026
// entity.go

package analytics

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"
)

// Properties is the free-form event payload, persisted as jsonb.
type Properties map[string]any

func (p Properties) Value() (driver.Value, error) {
	if p == nil {
		return json.Marshal(Properties{})
	}
	return json.Marshal(p)
}

func (p *Properties) Scan(src any) error {
	switch v := src.(type) {
	case []byte:
		return json.Unmarshal(v, p)
	case string:
		return json.Unmarshal([]byte(v), p)
	case nil:
		*p = Properties{}
		return nil
	default:
		return fmt.Errorf("unsupported properties source type %T", src)
	}
}

// Event is one recorded product event. Events are append-only.
type Event struct {
	ID         string     `db:"id"`
	UserID     string     `db:"user_id"`
	Name       string     `db:"name"`
	Properties Properties `db:"properties"`
	CreatedAt  time.Time  `db:"created_at"`
}
