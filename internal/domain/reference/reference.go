// Package reference describes the polymorphic pointer that ledger entries,
// payment transactions and notifications carry to the record that caused
// them.
package reference

import (
	"database/sql/driver"
	"encoding/json"
	"errors"
	"fmt"
)

type Kind string

const (
	KindPolicy           Kind = "policy"
	KindMembershipPlan   Kind = "membership_plan"
	KindPayment          Kind = "payment"
	KindFamilyInvitation Kind = "family_invitation"
)

var ErrUnknownKind = errors.New("unknown reference kind")

// Ref is stored as two nullable columns, <prefix>kind and <prefix>id. The zero
// value means "no reference" and is persisted as NULL/NULL.
type Ref struct {
	Kind Kind `gorm:"column:kind;type:varchar(32)"`
	ID   ID   `gorm:"column:id;type:uuid"`
}

func Policy(id string) Ref           { return Ref{Kind: KindPolicy, ID: ID(id)} }
func MembershipPlan(id string) Ref   { return Ref{Kind: KindMembershipPlan, ID: ID(id)} }
func Payment(id string) Ref          { return Ref{Kind: KindPayment, ID: ID(id)} }
func FamilyInvitation(id string) Ref { return Ref{Kind: KindFamilyInvitation, ID: ID(id)} }

func (r Ref) IsZero() bool {
	return r.Kind == "" && r.ID == ""
}

func (r Ref) Validate() error {
	if r.IsZero() {
		return nil
	}
	switch r.Kind {
	case KindPolicy, KindMembershipPlan, KindPayment, KindFamilyInvitation:
	default:
		return fmt.Errorf("%w: %q", ErrUnknownKind, string(r.Kind))
	}
	if r.ID == "" {
		return fmt.Errorf("reference %s without id", r.Kind)
	}
	return nil
}

func (r Ref) String() string {
	if r.IsZero() {
		return ""
	}
	return string(r.Kind) + ":" + string(r.ID)
}

type refJSON struct {
	Kind Kind   `json:"kind"`
	ID   string `json:"id"`
}

func (r Ref) MarshalJSON() ([]byte, error) {
	if r.IsZero() {
		return []byte("null"), nil
	}
	return json.Marshal(refJSON{Kind: r.Kind, ID: string(r.ID)})
}

func (r *Ref) UnmarshalJSON(data []byte) error {
	if string(data) == "null" {
		*r = Ref{}
		return nil
	}
	var raw refJSON
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	*r = Ref{Kind: raw.Kind, ID: ID(raw.ID)}
	return r.Validate()
}

func (k Kind) Value() (driver.Value, error) {
	if k == "" {
		return nil, nil
	}
	return string(k), nil
}

func (k *Kind) Scan(value any) error {
	s, err := scanString(value)
	if err != nil {
		return err
	}
	*k = Kind(s)
	return nil
}

// ID is a record id that maps the empty string to NULL.
type ID string

func (id ID) Value() (driver.Value, error) {
	if id == "" {
		return nil, nil
	}
	return string(id), nil
}

func (id *ID) Scan(value any) error {
	s, err := scanString(value)
	if err != nil {
		return err
	}
	*id = ID(s)
	return nil
}

func scanString(value any) (string, error) {
	switch v := value.(type) {
	case nil:
		return "", nil
	case string:
		return v, nil
	case []byte:
		return string(v), nil
	default:
		return "", fmt.Errorf("reference: cannot scan %T", value)
	}
}
