package domain

// Service is a bookable vehicle service from the catalog.
type Service struct {
	ID  string
	Doc Document
}

// Name returns the service display name.
func (s *Service) Name() string {
	name, _ := s.Doc.String("name")
	return name
}

// Description returns the optional long description.
func (s *Service) Description() string {
	desc, _ := s.Doc.String("description")
	return desc
}

// Price returns the catalog price. Services without a numeric price sort as zero.
func (s *Service) Price() float64 {
	price, _ := s.Doc.Float("price")
	return price
}

func (s Service) MarshalJSON() ([]byte, error) {
	return marshalWithID(s.ID, s.Doc)
}

func (s *Service) UnmarshalJSON(data []byte) error {
	id, doc, err := unmarshalWithID(data)
	if err != nil {
		return err
	}
	s.ID, s.Doc = id, doc
	return nil
}

// SortDirection orders services by price.
type SortDirection string

const (
	SortLowToHigh SortDirection = "lth"
	SortHighToLow SortDirection = "htl"
)

// ServiceFilter narrows catalog listings.
type ServiceFilter struct {
	Search string
	Sort   SortDirection
}

// Descending reports whether prices should be sorted high to low.
func (f ServiceFilter) Descending() bool {
	return f.Sort == SortHighToLow
}
