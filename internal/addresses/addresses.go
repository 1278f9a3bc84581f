// Package addresses resolves Vietnamese province/district/ward selections
// from the public provinces.open-api.vn tree.
//
// Each level is cached for the lifetime of the process: provinces as a
// single list, districts and wards keyed by the parent code. Lookup failure
// degrades to an empty list (the selector just shows nothing) rather than an
// error — the page stays usable and the next call retries the fetch.
package addresses

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"
)

// Node is one selectable division. Value and Code are the same stringified
// numeric code; Label is the display form.
type Node struct {
	Value        string
	Code         string
	Name         string
	DivisionType string
	Label        string
}

// Service fetches and caches the division tree. Safe for concurrent use.
type Service struct {
	baseURL    string
	httpClient *http.Client

	mu        sync.RWMutex
	provinces []Node
	districts map[string][]Node
	wards     map[string][]Node
}

// New returns a Service rooted at baseURL (the open-api.vn "/api" root).
func New(baseURL string, timeout time.Duration) *Service {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &Service{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: timeout},
		districts:  map[string][]Node{},
		wards:      map[string][]Node{},
	}
}

type division struct {
	Code         json.Number `json:"code"`
	Name         string      `json:"name"`
	DivisionType string      `json:"division_type"`
	Districts    []division  `json:"districts"`
	Wards        []division  `json:"wards"`
}

// Provinces returns all provinces, fetching at most once per process until
// ClearCaches is called.
func (s *Service) Provinces(ctx context.Context) []Node {
	s.mu.RLock()
	cached := s.provinces
	s.mu.RUnlock()
	if len(cached) > 0 {
		return cached
	}

	var divisions []division
	if err := s.get(ctx, "/?depth=1", &divisions); err != nil {
		log.Printf("addresses: fetch provinces: %v", err)
		return []Node{}
	}
	nodes := toNodes(divisions)

	s.mu.Lock()
	s.provinces = nodes
	s.mu.Unlock()
	return nodes
}

// Districts returns the districts of one province, cached by province code.
func (s *Service) Districts(ctx context.Context, provinceCode string) []Node {
	if provinceCode == "" {
		return []Node{}
	}

	s.mu.RLock()
	cached, ok := s.districts[provinceCode]
	s.mu.RUnlock()
	if ok {
		return cached
	}

	var parent division
	if err := s.get(ctx, "/p/"+url.PathEscape(provinceCode)+"?depth=2", &parent); err != nil {
		log.Printf("addresses: fetch districts for province %s: %v", provinceCode, err)
		return []Node{}
	}
	nodes := toNodes(parent.Districts)

	s.mu.Lock()
	s.districts[provinceCode] = nodes
	s.mu.Unlock()
	return nodes
}

// Wards returns the wards of one district, cached by district code.
func (s *Service) Wards(ctx context.Context, districtCode string) []Node {
	if districtCode == "" {
		return []Node{}
	}

	s.mu.RLock()
	cached, ok := s.wards[districtCode]
	s.mu.RUnlock()
	if ok {
		return cached
	}

	var parent division
	if err := s.get(ctx, "/d/"+url.PathEscape(districtCode)+"?depth=2", &parent); err != nil {
		log.Printf("addresses: fetch wards for district %s: %v", districtCode, err)
		return []Node{}
	}
	nodes := toNodes(parent.Wards)

	s.mu.Lock()
	s.wards[districtCode] = nodes
	s.mu.Unlock()
	return nodes
}

// ClearCaches drops all three caches unconditionally. Next calls refetch.
func (s *Service) ClearCaches() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.provinces = nil
	s.districts = map[string][]Node{}
	s.wards = map[string][]Node{}
}

// Find returns the node with the given value from a list, or nil.
func Find(nodes []Node, value string) *Node {
	for i := range nodes {
		if nodes[i].Value == value {
			return &nodes[i]
		}
	}
	return nil
}

func (s *Service) get(ctx context.Context, endpoint string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.baseURL+endpoint, nil)
	if err != nil {
		return err
	}
	resp, err := s.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("unexpected status %d", resp.StatusCode)
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode: %w", err)
	}
	return nil
}

func toNodes(divisions []division) []Node {
	nodes := make([]Node, 0, len(divisions))
	for _, d := range divisions {
		code := d.Code.String()
		nodes = append(nodes, Node{
			Value:        code,
			Code:         code,
			Name:         d.Name,
			DivisionType: formatDivisionType(d.DivisionType),
			Label:        d.Name,
		})
	}
	return nodes
}

// formatDivisionType title-cases each word: "thanh pho" -> "Thanh Pho".
func formatDivisionType(divisionType string) string {
	if divisionType == "" {
		return ""
	}
	words := strings.Split(divisionType, " ")
	for i, w := range words {
		if w == "" {
			continue
		}
		r := []rune(w)
		words[i] = strings.ToUpper(string(r[0])) + string(r[1:])
	}
	return strings.Join(words, " ")
}
