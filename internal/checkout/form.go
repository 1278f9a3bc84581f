// Package checkout holds the drop checkout form: contact fields, the
// cascading address selection, field validation, and purchase submission.
//
// Validation failures are data, not errors: they land in an error map keyed
// by field name that the view layer renders inline. Only transport and
// backend failures surface as Go errors.
package checkout

import (
	"context"
	"errors"
	"regexp"
	"sync"

	"github.com/donaldvibe/storefront/internal/addresses"
	"github.com/donaldvibe/storefront/internal/api"
)

// Validation messages, as shipped to customers.
const (
	MsgRequired     = "Trường này là bắt buộc"
	MsgInvalidPhone = "Số điện thoại không hợp lệ"
	MsgInvalidEmail = "Email không hợp lệ"
)

// ErrNoPaymentURL is returned when the backend accepts a purchase but the
// response carries no redirect target.
var ErrNoPaymentURL = errors.New("No payment URL received")

// ErrPurchaseInFlight is returned when Submit is called while a previous
// submission has not finished. This is a UI double-click guard, not a
// mutex: callers doing programmatic retries must serialize themselves.
var ErrPurchaseInFlight = errors.New("purchase already in progress")

var (
	// Vietnamese mobile numbers: optional +84 country form, then a valid
	// mobile prefix and eight more digits.
	phonePattern = regexp.MustCompile(`^(0|\+84)[35789][0-9]{8}$`)
	emailPattern = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)
)

// Contact is the checkout contact block. Province/District/Ward hold the
// display names submitted to the backend; the selected codes live on Form.
type Contact struct {
	Phone    string
	Email    string
	Name     string
	Address  string
	Province string
	District string
	Ward     string
}

// Fields lists the validated field names in display order.
var Fields = []string{"phone", "email", "name", "address", "province", "district", "ward"}

// Form is the checkout form state. A Form belongs to one page instance;
// the internal mutex only protects the cascade against a stale async
// completion overwriting a newer selection.
type Form struct {
	client    api.Client
	addresses *addresses.Service

	Contact Contact
	Errors  map[string]string

	Provinces []addresses.Node
	Districts []addresses.Node
	Wards     []addresses.Node

	SelectedProvinceCode string
	SelectedDistrictCode string
	SelectedWardCode     string

	mu         sync.Mutex
	generation uint64
	purchasing bool
}

// NewForm returns an empty checkout form.
func NewForm(client api.Client, svc *addresses.Service) *Form {
	return &Form{
		client:    client,
		addresses: svc,
		Errors:    map[string]string{},
	}
}

// FetchProvinces resolves the top cascade level. Pure I/O: no form state
// is touched, so it may run in a fetch goroutine. A form built without an
// address service keeps every cascade level empty.
func (f *Form) FetchProvinces(ctx context.Context) []addresses.Node {
	if f.addresses == nil {
		return nil
	}
	return f.addresses.Provinces(ctx)
}

// ApplyProvinces installs the province list.
func (f *Form) ApplyProvinces(nodes []addresses.Node) {
	f.Provinces = nodes
}

// LoadProvinces populates the top cascade level in one blocking call.
func (f *Form) LoadProvinces(ctx context.Context) {
	f.ApplyProvinces(f.FetchProvinces(ctx))
}

// BeginSelectProvince records the province choice and cascade-resets
// everything below it. It returns the selection generation to pass to
// ApplyDistricts once the district fetch completes; a selection made while
// that fetch is in flight wins, because the stale generation is discarded.
func (f *Form) BeginSelectProvince(provinceCode string) uint64 {
	f.mu.Lock()
	f.generation++
	gen := f.generation
	f.mu.Unlock()

	f.SelectedProvinceCode = provinceCode
	if node := addresses.Find(f.Provinces, provinceCode); node != nil {
		f.Contact.Province = node.Name
	} else {
		f.Contact.Province = ""
	}

	f.SelectedDistrictCode = ""
	f.Contact.District = ""
	f.SelectedWardCode = ""
	f.Contact.Ward = ""
	f.Districts = nil
	f.Wards = nil

	f.ValidateField("province")
	return gen
}

// FetchDistricts resolves the district list for a province. Pure I/O.
func (f *Form) FetchDistricts(ctx context.Context, provinceCode string) []addresses.Node {
	if f.addresses == nil {
		return nil
	}
	return f.addresses.Districts(ctx, provinceCode)
}

// ApplyDistricts installs a district fetch's result unless a newer
// selection superseded it.
func (f *Form) ApplyDistricts(gen uint64, nodes []addresses.Node) {
	if f.stale(gen) {
		return
	}
	f.Districts = nodes
}

// SelectProvince is the blocking form of BeginSelectProvince +
// FetchDistricts + ApplyDistricts.
func (f *Form) SelectProvince(ctx context.Context, provinceCode string) {
	gen := f.BeginSelectProvince(provinceCode)
	f.ApplyDistricts(gen, f.FetchDistricts(ctx, provinceCode))
}

// BeginSelectDistrict records the district choice and resets the ward
// level, returning the generation for ApplyWards.
func (f *Form) BeginSelectDistrict(districtCode string) uint64 {
	f.mu.Lock()
	f.generation++
	gen := f.generation
	f.mu.Unlock()

	f.SelectedDistrictCode = districtCode
	if node := addresses.Find(f.Districts, districtCode); node != nil {
		f.Contact.District = node.Name
	} else {
		f.Contact.District = ""
	}

	f.SelectedWardCode = ""
	f.Contact.Ward = ""
	f.Wards = nil

	f.ValidateField("district")
	return gen
}

// FetchWards resolves the ward list for a district. Pure I/O.
func (f *Form) FetchWards(ctx context.Context, districtCode string) []addresses.Node {
	if f.addresses == nil {
		return nil
	}
	return f.addresses.Wards(ctx, districtCode)
}

// ApplyWards installs a ward fetch's result unless superseded.
func (f *Form) ApplyWards(gen uint64, nodes []addresses.Node) {
	if f.stale(gen) {
		return
	}
	f.Wards = nodes
}

// SelectDistrict is the blocking form of BeginSelectDistrict + FetchWards
// + ApplyWards.
func (f *Form) SelectDistrict(ctx context.Context, districtCode string) {
	gen := f.BeginSelectDistrict(districtCode)
	f.ApplyWards(gen, f.FetchWards(ctx, districtCode))
}

func (f *Form) stale(gen uint64) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return gen != f.generation
}

// SelectWard records the ward choice. No further level to resolve.
func (f *Form) SelectWard(wardCode string) {
	f.SelectedWardCode = wardCode
	if node := addresses.Find(f.Wards, wardCode); node != nil {
		f.Contact.Ward = node.Name
	} else {
		f.Contact.Ward = ""
	}
	f.ValidateField("ward")
}

func (f *Form) fieldValue(field string) string {
	switch field {
	case "phone":
		return f.Contact.Phone
	case "email":
		return f.Contact.Email
	case "name":
		return f.Contact.Name
	case "address":
		return f.Contact.Address
	case "province":
		return f.Contact.Province
	case "district":
		return f.Contact.District
	case "ward":
		return f.Contact.Ward
	}
	return ""
}

// ValidateField validates one field, updating the error map in place.
func (f *Form) ValidateField(field string) {
	value := f.fieldValue(field)
	if value == "" {
		f.Errors[field] = MsgRequired
		return
	}

	switch field {
	case "phone":
		if !phonePattern.MatchString(value) {
			f.Errors[field] = MsgInvalidPhone
			return
		}
	case "email":
		if !emailPattern.MatchString(value) {
			f.Errors[field] = MsgInvalidEmail
			return
		}
	}
	delete(f.Errors, field)
}

// Validate runs every field validator and reports overall validity.
func (f *Form) Validate() bool {
	for _, field := range Fields {
		f.ValidateField(field)
	}
	return len(f.Errors) == 0
}

// Purchasing reports whether a submission is in flight.
func (f *Form) Purchasing() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.purchasing
}

// PrepareSubmit validates the form and, when valid and no submission is in
// flight, marks the form purchasing and returns a snapshot of the request.
// The snapshot lets the purchase run in a fetch goroutine without reading
// form fields the owner may keep editing.
func (f *Form) PrepareSubmit() (api.PurchaseRequest, bool) {
	f.mu.Lock()
	inFlight := f.purchasing
	f.mu.Unlock()
	if inFlight {
		return api.PurchaseRequest{}, false
	}

	if !f.Validate() {
		return api.PurchaseRequest{}, false
	}

	f.mu.Lock()
	f.purchasing = true
	f.mu.Unlock()

	return api.PurchaseRequest{
		Quantity: 1,
		Name:     f.Contact.Name,
		Phone:    f.Contact.Phone,
		Email:    f.Contact.Email,
		Address:  f.Contact.Address,
		Province: f.Contact.Province,
		District: f.Contact.District,
		Ward:     f.Contact.Ward,
	}, true
}

// FinishSubmit clears the in-flight guard.
func (f *Form) FinishSubmit() {
	f.mu.Lock()
	f.purchasing = false
	f.mu.Unlock()
}

// Submit validates the form and issues the purchase in one blocking call.
// On success it returns the payment redirect URL; the caller navigates
// there. A validation failure returns ("", nil) with the error map
// populated.
func (f *Form) Submit(ctx context.Context, dropID string) (string, error) {
	f.mu.Lock()
	inFlight := f.purchasing
	f.mu.Unlock()
	if inFlight {
		return "", ErrPurchaseInFlight
	}

	req, ok := f.PrepareSubmit()
	if !ok {
		return "", nil
	}
	defer f.FinishSubmit()

	result, err := f.client.Purchase(ctx, dropID, req)
	if err != nil {
		return "", err
	}
	if result == nil || result.PaymentURL == "" {
		return "", ErrNoPaymentURL
	}
	return result.PaymentURL, nil
}
