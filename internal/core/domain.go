package core

import (
	"errors"
	"slices"
	"strings"
	"time"
)

const (
	InvoiceUnpaid InvoiceStatus = "Unpaid"
	InvoicePaid   InvoiceStatus = "Paid"

	ProjectActive    ProjectStatus = "Active"
	ProjectOnHold    ProjectStatus = "On Hold"
	ProjectCompleted ProjectStatus = "Completed"
	ProjectCancelled ProjectStatus = "Cancelled"

	PaymentPending PaymentStatus = "Pending"
	PaymentPartial PaymentStatus = "Partially Paid"
	PaymentPaid    PaymentStatus = "Paid"

	RecurringWeekly   RecurringType = "weekly"
	RecurringBiweekly RecurringType = "biweekly"
	RecurringMonthly  RecurringType = "monthly"
)

// DefaultSource is the acquisition platform assumed when a client or
// project does not record one.
const DefaultSource = "Direct"

type (
	InvoiceStatus string
	ProjectStatus string
	PaymentStatus string
	RecurringType string

	Money struct {
		Cents int64
	}

	// Client is a person or company the freelancer works with.
	// IDs are opaque stable strings assigned by storage.
	Client struct {
		ID        string    `json:"id"`
		Name      string    `json:"name"`
		Email     string    `json:"email"`
		Tags      []string  `json:"tags"`
		Source    string    `json:"source"`
		CreatedAt time.Time `json:"createdAt"`
	}

	Invoice struct {
		ID          string        `json:"id"`
		ClientID    string        `json:"client"`
		Amount      Money         `json:"amountCents"`
		DueDate     time.Time     `json:"dueDate"`
		Status      InvoiceStatus `json:"status"`
		Description string        `json:"description,omitempty"`
		CreatedAt   time.Time     `json:"createdAt"`
	}

	Meeting struct {
		ID            string        `json:"id"`
		ClientID      string        `json:"client"`
		Date          time.Time     `json:"date"`
		Notes         string        `json:"notes,omitempty"`
		Recurring     bool          `json:"recurring"`
		RecurringType RecurringType `json:"recurringType,omitempty"`
	}

	Project struct {
		ID            string        `json:"id"`
		ClientID      string        `json:"client"`
		Name          string        `json:"name"`
		Platform      string        `json:"platform"`
		Status        ProjectStatus `json:"status"`
		Progress      int           `json:"progress"`
		Budget        Money         `json:"budgetCents"`
		AmountPaid    Money         `json:"amountPaidCents"`
		PaymentStatus PaymentStatus `json:"paymentStatus"`
		StartDate     time.Time     `json:"startDate"`
		Deadline      time.Time     `json:"deadline"`
		CompletedDate time.Time     `json:"completedDate"`
		Tags          []string      `json:"tags"`
	}
)

var (
	ErrInvalidAmount   = errors.New("invalid amount")
	ErrEmptyName       = errors.New("empty name")
	ErrEmptyClient     = errors.New("empty client reference")
	ErrInvalidStatus   = errors.New("invalid status")
	ErrInvalidProgress = errors.New("progress out of range")
	ErrZeroDate        = errors.New("date cannot be zero")
)

// HasTag reports whether the client carries the given tag.
func (c Client) HasTag(tag string) bool {
	return slices.Contains(c.Tags, tag)
}

func (c Client) Validate() error {
	if strings.TrimSpace(c.Name) == "" {
		return ErrEmptyName
	}
	if len(c.Name) > 200 {
		return errors.New("name too long (max 200 characters)")
	}
	return nil
}

func (m Money) Validate() error {
	if m.Cents < 0 {
		return ErrInvalidAmount
	}
	return nil
}

func (s InvoiceStatus) Valid() bool {
	return s == InvoiceUnpaid || s == InvoicePaid
}

func (s ProjectStatus) Valid() bool {
	switch s {
	case ProjectActive, ProjectOnHold, ProjectCompleted, ProjectCancelled:
		return true
	}
	return false
}

func (s PaymentStatus) Valid() bool {
	switch s {
	case PaymentPending, PaymentPartial, PaymentPaid:
		return true
	}
	return false
}

func (t RecurringType) Valid() bool {
	switch t {
	case RecurringWeekly, RecurringBiweekly, RecurringMonthly:
		return true
	}
	return false
}

func (i Invoice) Validate() error {
	if strings.TrimSpace(i.ClientID) == "" {
		return ErrEmptyClient
	}
	if err := i.Amount.Validate(); err != nil {
		return err
	}
	if i.DueDate.IsZero() {
		return ErrZeroDate
	}
	if !i.Status.Valid() {
		return ErrInvalidStatus
	}
	return nil
}

func (m Meeting) Validate() error {
	if strings.TrimSpace(m.ClientID) == "" {
		return ErrEmptyClient
	}
	if m.Date.IsZero() {
		return ErrZeroDate
	}
	if m.Recurring && !m.RecurringType.Valid() {
		return errors.New("invalid recurring type")
	}
	return nil
}

func (p Project) Validate() error {
	if strings.TrimSpace(p.Name) == "" {
		return ErrEmptyName
	}
	if strings.TrimSpace(p.ClientID) == "" {
		return ErrEmptyClient
	}
	if !p.Status.Valid() {
		return ErrInvalidStatus
	}
	if !p.PaymentStatus.Valid() {
		return ErrInvalidStatus
	}
	if p.Progress < 0 || p.Progress > 100 {
		return ErrInvalidProgress
	}
	if err := p.Budget.Validate(); err != nil {
		return err
	}
	return p.AmountPaid.Validate()
}
