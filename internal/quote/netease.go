package quote

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"golang.org/x/text/encoding/simplifiedchinese"
	"golang.org/x/text/transform"

	"github.com/JasonZhangjc/stock-query/internal/domain"
)

// The feed wraps its JSON payload in a JavaScript callback.
const (
	callbackPrefix = "_ntes_quote_callback("
	callbackSuffix = ");"
)

// NetEase fetches quotes from the NetEase money feed. Codes carry the
// exchange prefix digit: 0 for Shanghai, 1 for Shenzhen (e.g. 0600000).
type NetEase struct {
	url        string
	gbk        bool
	httpClient *http.Client
}

// NewNetEase creates a NetEase provider. Codes are appended to url joined by
// commas. charset "gbk" decodes the body to UTF-8 before parsing.
func NewNetEase(url string, timeout time.Duration, charset string) *NetEase {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &NetEase{
		url:        url,
		gbk:        strings.EqualFold(charset, "gbk"),
		httpClient: &http.Client{Timeout: timeout},
	}
}

// Fetch performs one GET for all codes.
func (n *NetEase) Fetch(ctx context.Context, codes []string) (map[string]domain.Quote, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, n.url+strings.Join(codes, ","), nil)
	if err != nil {
		return nil, fmt.Errorf("building quote request: %w", err)
	}
	req.Header.Set("User-Agent", "Mozilla/5.0")

	resp, err := n.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%w: status %d", ErrProtocol, resp.StatusCode)
	}

	var r io.Reader = resp.Body
	if n.gbk {
		r = transform.NewReader(resp.Body, simplifiedchinese.GBK.NewDecoder())
	}
	body, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("reading quote response: %w", err)
	}
	return ParseNetEase(body)
}

// netEaseQuote is one entry of the feed payload, keyed by code.
type netEaseQuote struct {
	Name      string `json:"name"`
	Price     number `json:"price"`
	Percent   number `json:"percent"`
	Open      number `json:"open"`
	YestClose number `json:"yestclose"`
	High      number `json:"high"`
	Low       number `json:"low"`
}

// ParseNetEase extracts the quotes from a callback-wrapped feed body.
func ParseNetEase(body []byte) (map[string]domain.Quote, error) {
	s := strings.TrimSpace(string(body))
	if !strings.HasPrefix(s, callbackPrefix) {
		return nil, ErrProtocol
	}
	s = strings.TrimPrefix(s, callbackPrefix)
	s = strings.TrimSuffix(s, callbackSuffix)
	s = strings.TrimSuffix(s, ")")

	var raw map[string]netEaseQuote
	if err := json.Unmarshal([]byte(s), &raw); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrProtocol, err)
	}
	if raw == nil {
		return nil, fmt.Errorf("%w: null payload", ErrProtocol)
	}

	quotes := make(map[string]domain.Quote, len(raw))
	for code, q := range raw {
		quotes[code] = domain.Quote{
			Name:      q.Name,
			Price:     float64(q.Price),
			Percent:   float64(q.Percent),
			Open:      float64(q.Open),
			PrevClose: float64(q.YestClose),
			High:      float64(q.High),
			Low:       float64(q.Low),
		}
	}
	return quotes, nil
}

// number accepts both JSON numbers and numeric strings; empty and null
// decode to zero.
type number float64

func (n *number) UnmarshalJSON(b []byte) error {
	s := strings.Trim(string(b), `"`)
	if s == "" || s == "null" {
		*n = 0
		return nil
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return fmt.Errorf("invalid number %s", b)
	}
	*n = number(f)
	return nil
}
