package models

import (
	"errors"
	"fmt"
	"time"
)

type PoemType string

const (
	PoemTypeKavithai PoemType = "kavithai" // கவிதை, стихотворение
	PoemTypeKaturai  PoemType = "katurai"  // கட்டுரை, эссе
)

// ErrInvalidPoem wraps every Validate failure.
var ErrInvalidPoem = errors.New("invalid poem")

// DateLayout is the ISO calendar date format poems are stored with.
const DateLayout = "2006-01-02"

// Poem представляет литературную запись: стихотворение или эссе
type Poem struct {
	ID     int64    `json:"id" db:"id"`
	Title  string   `json:"title" db:"title"`
	Body   string   `json:"body" db:"body"` // может содержать переводы строк
	Author string   `json:"author" db:"author"`
	Date   string   `json:"date" db:"date"` // YYYY-MM-DD
	Type   PoemType `json:"type" db:"type"`
}

func (t PoemType) Valid() bool {
	switch t {
	case PoemTypeKavithai, PoemTypeKaturai:
		return true
	}
	return false
}

// Validate checks the fields the store requires to be present.
func (p *Poem) Validate() error {
	switch {
	case p.Title == "":
		return fmt.Errorf("%w: title is required", ErrInvalidPoem)
	case p.Body == "":
		return fmt.Errorf("%w: body is required", ErrInvalidPoem)
	case !p.Type.Valid():
		return fmt.Errorf("%w: invalid poem type %q, must be one of: %s, %s", ErrInvalidPoem, p.Type, PoemTypeKavithai, PoemTypeKaturai)
	case p.Date != "" && !validDate(p.Date):
		return fmt.Errorf("%w: date %q is not YYYY-MM-DD", ErrInvalidPoem, p.Date)
	}
	return nil
}

func validDate(s string) bool {
	_, err := time.Parse(DateLayout, s)
	return err == nil
}
