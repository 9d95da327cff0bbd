package order

// Status represents the lifecycle status of an internal order
type Status string

const (
	StatusDraft      Status = "draft"
	StatusPending    Status = "pending"
	StatusConfirmed  Status = "confirmed"
	StatusProcessing Status = "processing"
	StatusShipped    Status = "shipped"
	StatusDelivered  Status = "delivered"
	StatusCompleted  Status = "completed"
	StatusCancelled  Status = "cancelled"
	StatusRefunded   Status = "refunded"
)

// statusRank maps each non-terminal status to its position in the forward
// progression. Terminal statuses are not ranked; they are always applicable.
var statusRank = map[Status]int{
	StatusDraft:      0,
	StatusPending:    1,
	StatusConfirmed:  2,
	StatusProcessing: 3,
	StatusShipped:    4,
	StatusDelivered:  5,
	StatusCompleted:  6,
}

// IsValid checks if the status is part of the order vocabulary
func (s Status) IsValid() bool {
	if s.IsTerminal() {
		return true
	}
	_, ok := statusRank[s]
	return ok
}

// String returns the string representation of Status
func (s Status) String() string {
	return string(s)
}

// IsTerminal returns true for absorbing statuses reachable from any state
func (s Status) IsTerminal() bool {
	return s == StatusCancelled || s == StatusRefunded
}

// Rank returns the ordinal of the status in the forward progression.
// Terminal statuses return -1 and false.
func (s Status) Rank() (int, bool) {
	rank, ok := statusRank[s]
	if !ok {
		return -1, false
	}
	return rank, true
}

// CanProgressTo reports whether target is a valid forward transition from s.
// Terminal targets are always allowed; terminal current states admit nothing.
// Skipping intermediate statuses is allowed: external platforms routinely
// report an order straight into a later state.
func (s Status) CanProgressTo(target Status) bool {
	if s.IsTerminal() {
		return false
	}
	if target.IsTerminal() {
		return true
	}
	current, ok := s.Rank()
	if !ok {
		return false
	}
	candidate, ok := target.Rank()
	if !ok {
		return false
	}
	return candidate > current
}

// FulfillmentStatus represents the fulfillment state reported for an order
type FulfillmentStatus string

const (
	FulfillmentUnfulfilled FulfillmentStatus = "unfulfilled"
	FulfillmentPartial     FulfillmentStatus = "partial"
	FulfillmentFulfilled   FulfillmentStatus = "fulfilled"
)

// IsValid checks if the fulfillment status is part of the vocabulary
func (f FulfillmentStatus) IsValid() bool {
	switch f {
	case FulfillmentUnfulfilled, FulfillmentPartial, FulfillmentFulfilled:
		return true
	}
	return false
}

// String returns the string representation of FulfillmentStatus
func (f FulfillmentStatus) String() string {
	return string(f)
}

// PaymentStatus represents the payment state reported for an order
type PaymentStatus string

const (
	PaymentStatusPending           PaymentStatus = "pending"
	PaymentStatusPaid              PaymentStatus = "paid"
	PaymentStatusPartiallyRefunded PaymentStatus = "partially_refunded"
	PaymentStatusRefunded          PaymentStatus = "refunded"
	PaymentStatusVoided            PaymentStatus = "voided"
)

// IsValid checks if the payment status is part of the vocabulary
func (p PaymentStatus) IsValid() bool {
	switch p {
	case PaymentStatusPending, PaymentStatusPaid, PaymentStatusPartiallyRefunded,
		PaymentStatusRefunded, PaymentStatusVoided:
		return true
	}
	return false
}

// String returns the string representation of PaymentStatus
func (p PaymentStatus) String() string {
	return string(p)
}

// IndicatesRefund returns true when the payment status signals that some or
// all of the payment has been returned to the buyer
func (p PaymentStatus) IndicatesRefund() bool {
	return p == PaymentStatusRefunded || p == PaymentStatusPartiallyRefunded
}
