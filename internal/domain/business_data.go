package domain

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
)

// BusinessData is the structured business knowledge fed to the persona
// compiler. All fields are optional; the compiler renders explicit
// placeholders for anything absent. Stored as a single jsonb column.
type BusinessData struct {
	BusinessName       string       `json:"business_name,omitempty"`
	ServiceDescription string       `json:"service_description,omitempty"`
	Greeting           string       `json:"greeting,omitempty"`
	Hours              []HoursRange `json:"hours_of_operation,omitempty"`
	Prices             []PriceItem  `json:"price_info,omitempty"`
	ContactPhone       string       `json:"contact_phone,omitempty"`
	BookingURL         string       `json:"booking_url,omitempty"`
	Tasks              []string     `json:"tasks,omitempty"`
	CallTypes          []string     `json:"call_types,omitempty"`
	Industries         []string     `json:"industries,omitempty"`
}

// HoursRange describes opening hours for a set of days.
type HoursRange struct {
	Days      []string `json:"days,omitempty"`
	StartTime string   `json:"start_time,omitempty"`
	EndTime   string   `json:"end_time,omitempty"`
}

// PriceItem is one entry of the business price list.
type PriceItem struct {
	PackageName  string `json:"package_name,omitempty"`
	PackagePrice string `json:"package_price,omitempty"`
}

// Value implements driver.Valuer for BusinessData
func (b BusinessData) Value() (driver.Value, error) {
	data, err := json.Marshal(b)
	if err != nil {
		return nil, err
	}
	if string(data) == "{}" {
		return nil, nil
	}
	return data, nil
}

// Scan implements sql.Scanner for BusinessData
func (b *BusinessData) Scan(value interface{}) error {
	if value == nil {
		*b = BusinessData{}
		return nil
	}

	var bytes []byte
	switch v := value.(type) {
	case []byte:
		bytes = v
	case string:
		bytes = []byte(v)
	default:
		return fmt.Errorf("cannot scan %T into BusinessData", value)
	}

	return json.Unmarshal(bytes, b)
}

// StringList is a jsonb-backed list of strings.
type StringList []string

// Value implements driver.Valuer for StringList
func (l StringList) Value() (driver.Value, error) {
	if l == nil {
		return nil, nil
	}
	return json.Marshal(l)
}

// Scan implements sql.Scanner for StringList
func (l *StringList) Scan(value interface{}) error {
	if value == nil {
		*l = nil
		return nil
	}

	var bytes []byte
	switch v := value.(type) {
	case []byte:
		bytes = v
	case string:
		bytes = []byte(v)
	default:
		return fmt.Errorf("cannot scan %T into StringList", value)
	}

	return json.Unmarshal(bytes, l)
}
