package models

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
)

// The external record schema keeps case sub-collections (orders, notes, files,
// activity log) as JSON text inside the parent row rather than in separate
// tables. These list types implement driver.Valuer / sql.Scanner so GORM can
// read and write them transparently.

func jsonValue(v interface{}) (driver.Value, error) {
	b, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	return string(b), nil
}

func jsonScan(dest interface{}, value interface{}) error {
	if value == nil {
		return nil
	}
	switch data := value.(type) {
	case []byte:
		if len(data) == 0 {
			return nil
		}
		return json.Unmarshal(data, dest)
	case string:
		if data == "" {
			return nil
		}
		return json.Unmarshal([]byte(data), dest)
	default:
		return fmt.Errorf("unsupported column type %T", value)
	}
}

// OrderList is the JSON-encoded list of order line items on a case.
type OrderList []Order

func (l OrderList) Value() (driver.Value, error) { return jsonValue([]Order(l)) }
func (l *OrderList) Scan(value interface{}) error {
	return jsonScan((*[]Order)(l), value)
}

// NoteList is the JSON-encoded list of notes on a case.
type NoteList []CaseNote

func (l NoteList) Value() (driver.Value, error) { return jsonValue([]CaseNote(l)) }
func (l *NoteList) Scan(value interface{}) error {
	return jsonScan((*[]CaseNote)(l), value)
}

// FileList is the JSON-encoded list of file attachments on a case.
type FileList []CaseFile

func (l FileList) Value() (driver.Value, error) { return jsonValue([]CaseFile(l)) }
func (l *FileList) Scan(value interface{}) error {
	return jsonScan((*[]CaseFile)(l), value)
}

// AuditLogList is the JSON-encoded, append-only activity history of a case.
type AuditLogList []AuditLog

func (l AuditLogList) Value() (driver.Value, error) { return jsonValue([]AuditLog(l)) }
func (l *AuditLogList) Scan(value interface{}) error {
	return jsonScan((*[]AuditLog)(l), value)
}

// ServicePriceList is the JSON-encoded per-technician price list.
type ServicePriceList []ServicePrice

func (l ServicePriceList) Value() (driver.Value, error) { return jsonValue([]ServicePrice(l)) }
func (l *ServicePriceList) Scan(value interface{}) error {
	return jsonScan((*[]ServicePrice)(l), value)
}

// StringList is a JSON-encoded list of strings (technician skills).
type StringList []string

func (l StringList) Value() (driver.Value, error) { return jsonValue([]string(l)) }
func (l *StringList) Scan(value interface{}) error {
	return jsonScan((*[]string)(l), value)
}

// UintList is a JSON-encoded list of record ids (payment case ids).
type UintList []uint

func (l UintList) Value() (driver.Value, error) { return jsonValue([]uint(l)) }
func (l *UintList) Scan(value interface{}) error {
	return jsonScan((*[]uint)(l), value)
}
