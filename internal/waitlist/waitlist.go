// Package waitlist validates landing-page waitlist signups and forwards
// them to a headless Google Form.
package waitlist

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"net/url"
	"regexp"
	"strings"
	"time"
)

// Signup messages, in the landing page's symbiote voice.
const (
	MsgRequiredEmail = "VẬT CHỦ ơi, VUI LÒNG CẬP NHẬT TẦN SỐ QUÉT CỦA BẠN"
	MsgInvalidEmail  = "TẦN SỐ QUÉT KHÔNG HỢP LỆ (VẬT CHỦ CẦU THẬN)"
	MsgRequiredPhone = "VẬT CHỦ, VUI LÒNG NHẬP KÊNH LIÊN LẠC CỦA BẠN"
	MsgInvalidPhone  = "KÊNH LIÊN LẠC KHÔNG HỢP LỆ (VD: 0901234567, +84901234567, 090-123-4567)"
	MsgSuccess       = "CHẤP NHẬN CÔNG SINH HOÀN THÀNH. CHUẨN BỊ ĐÓN VẬT CHỦ MỚI."
	MsgError         = "Có lỗi xảy ra. Vui lòng thử lại sau."
)

var (
	emailPattern = regexp.MustCompile(`^[a-zA-Z0-9.!#$%&'*+/=?^_` + "`" + `{|}~-]+@[a-zA-Z0-9](?:[a-zA-Z0-9-]{0,61}[a-zA-Z0-9])?(?:\.[a-zA-Z0-9](?:[a-zA-Z0-9-]{0,61}[a-zA-Z0-9])?)*$`)
	nonDigit     = regexp.MustCompile(`[^\d+]`)

	phonePatterns = []*regexp.Regexp{
		regexp.MustCompile(`^0[35789]\d{8}$`), // mobile, 10 digits
		regexp.MustCompile(`^02\d{9}$`),       // landline, 11 digits
		regexp.MustCompile(`^02\d{10}$`),      // landline, 12 digits
	}
)

// ValidEmail reports whether email passes the strict signup check.
// Surrounding whitespace and case are ignored.
func ValidEmail(email string) bool {
	return emailPattern.MatchString(strings.ToLower(strings.TrimSpace(email)))
}

// ValidPhone reports whether phone is an acceptable Vietnamese number.
// Unlike checkout, signup is lenient: separators are stripped and the +84
// country prefix is folded to the domestic 0 form before matching.
func ValidPhone(phone string) bool {
	phone = strings.TrimSpace(phone)
	if phone == "" {
		return false
	}

	cleaned := nonDigit.ReplaceAllString(phone, "")
	if strings.HasPrefix(cleaned, "+84") {
		cleaned = "0" + cleaned[3:]
	}
	cleaned = strings.TrimPrefix(cleaned, "+")

	for _, pattern := range phonePatterns {
		if pattern.MatchString(cleaned) {
			return true
		}
	}
	return false
}

// Service submits signups to a Google Form. When the form URL or email
// entry field is unconfigured the service runs in simulated mode: signups
// are logged and accepted without a network call.
type Service struct {
	formURL    string
	emailEntry string
	phoneEntry string
	client     *http.Client
}

// New creates a waitlist service. Pass empty formURL or emailEntry for
// simulated mode.
func New(formURL, emailEntry, phoneEntry string) *Service {
	return &Service{
		formURL:    formURL,
		emailEntry: emailEntry,
		phoneEntry: phoneEntry,
		client:     &http.Client{Timeout: 10 * time.Second},
	}
}

// Simulated reports whether the service accepts signups without submitting
// them anywhere.
func (s *Service) Simulated() bool {
	return s.formURL == "" || s.emailEntry == ""
}

// Submit forwards a signup. Email is required; phone rides along when both
// the value and the configured entry field are present. Google Forms does
// not return a readable body, so only transport failures are reported.
func (s *Service) Submit(ctx context.Context, email, phone string) error {
	if s.Simulated() {
		log.Printf("waitlist: simulated signup email=%s phone=%s", email, phone)
		return nil
	}

	form := url.Values{}
	form.Set(s.emailEntry, email)
	if phone != "" && s.phoneEntry != "" {
		form.Set(s.phoneEntry, phone)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.formURL, strings.NewReader(form.Encode()))
	if err != nil {
		return fmt.Errorf("building waitlist request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := s.client.Do(req)
	if err != nil {
		return fmt.Errorf("submitting waitlist signup: %w", err)
	}
	resp.Body.Close()
	return nil
}

// Form holds the signup form state for the landing page.
type Form struct {
	service *Service

	Email   string
	Phone   string
	Message string
	Success bool
	Busy    bool
}

// NewForm returns an empty signup form over the given service.
func NewForm(service *Service) *Form {
	return &Form{service: service}
}

// Prepare validates the form. When valid it marks the form busy and
// returns the trimmed values for delivery; on a validation failure the
// message is set and ok is false.
func (f *Form) Prepare() (email, phone string, ok bool) {
	f.Success = false

	email = strings.TrimSpace(f.Email)
	if email == "" {
		f.Message = MsgRequiredEmail
		return "", "", false
	}
	if !ValidEmail(email) {
		f.Message = MsgInvalidEmail
		return "", "", false
	}

	phone = strings.TrimSpace(f.Phone)
	if phone == "" {
		f.Message = MsgRequiredPhone
		return "", "", false
	}
	if !ValidPhone(phone) {
		f.Message = MsgInvalidPhone
		return "", "", false
	}

	f.Busy = true
	return email, phone, true
}

// Deliver forwards a prepared signup. Pure I/O: no form state is touched,
// so it may run in a fetch goroutine while the owner keeps the form.
func (f *Form) Deliver(ctx context.Context, email, phone string) error {
	return f.service.Submit(ctx, email, phone)
}

// Finish records the delivery outcome.
func (f *Form) Finish(err error) {
	f.Busy = false
	if err != nil {
		log.Printf("waitlist: submit failed: %v", err)
		f.Message = MsgError
		return
	}
	f.Message = MsgSuccess
	f.Success = true
	f.Email = ""
	f.Phone = ""
}

// Submit validates the form and forwards the signup in one blocking call.
// Outcome lands in Message/Success for the view layer.
func (f *Form) Submit(ctx context.Context) {
	email, phone, ok := f.Prepare()
	if !ok {
		return
	}
	f.Finish(f.Deliver(ctx, email, phone))
}
