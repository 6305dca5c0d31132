package domain

// Order is a customer booking. Besides the well-known keys it carries any
// fields the client submitted.
type Order struct {
	ID  string
	Doc Document
}

const (
	OrderFieldCustomerEmail = "customerEmail"
	OrderFieldServiceID     = "serviceId"
	OrderFieldStatus        = "status"
)

// CustomerEmail returns the owner email, empty when unset.
func (o *Order) CustomerEmail() string {
	email, _ := o.Doc.String(OrderFieldCustomerEmail)
	return email
}

// Status returns the raw status value.
func (o *Order) Status() any {
	return o.Doc[OrderFieldStatus]
}

func (o Order) MarshalJSON() ([]byte, error) {
	return marshalWithID(o.ID, o.Doc)
}

func (o *Order) UnmarshalJSON(data []byte) error {
	id, doc, err := unmarshalWithID(data)
	if err != nil {
		return err
	}
	o.ID, o.Doc = id, doc
	return nil
}

// OrderFilter scopes order listings. A nil CustomerEmail matches every order.
type OrderFilter struct {
	CustomerEmail *string
}

// Matches reports whether the order falls inside the filter.
func (f OrderFilter) Matches(o *Order) bool {
	if f.CustomerEmail == nil {
		return true
	}
	email, ok := o.Doc.String(OrderFieldCustomerEmail)
	return ok && email == *f.CustomerEmail
}
