// Package registry looks up SRO NOSO membership by INN through the public
// registry search page.
package registry

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"go.uber.org/zap"
)

// Membership is one registry row matched by INN.
type Membership struct {
	Name     string `json:"name"`
	INN      string `json:"inn"`
	Status   string `json:"status"`
	JoinDate string `json:"join_date"`
	IsMember bool   `json:"is_member"`
}

// Statuses that count as active membership.
var memberStatuses = map[string]bool{
	"член сро":        true,
	"член совета сро": true,
	"претендент":      true,
}

type Client struct {
	baseURL    string
	httpClient *http.Client
	log        *zap.Logger
}

func NewClient(baseURL string, timeout time.Duration, log *zap.Logger) *Client {
	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	return &Client{
		baseURL:    baseURL,
		httpClient: &http.Client{Timeout: timeout},
		log:        log,
	}
}

// CheckMembershipByINN queries the registry with an exact INN filter and
// parses the results table. Returns nil when the INN is not listed or the
// registry cannot be reached; lookup problems never become hard failures.
func (c *Client) CheckMembershipByINN(ctx context.Context, inn string) (*Membership, error) {
	if inn == "" {
		return nil, fmt.Errorf("empty inn")
	}

	params := url.Values{}
	params.Set("PAGEN_1", "1")
	params.Set("arrFilter_pf[INNNumber]", inn)
	params.Set("set_filter", "Y")
	params.Set("EXACT_MATCH_1", "Y")

	reqURL := c.baseURL + "?" + params.Encode()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, fmt.Errorf("build registry request failed: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.log.Warn("registry request failed", zap.String("inn", inn), zap.Error(err))
		return nil, nil
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		c.log.Warn("registry returned non-200", zap.String("inn", inn), zap.Int("status", resp.StatusCode))
		return nil, nil
	}

	doc, err := goquery.NewDocumentFromReader(resp.Body)
	if err != nil {
		c.log.Warn("registry html parse failed", zap.String("inn", inn), zap.Error(err))
		return nil, nil
	}

	return c.findRow(doc, inn), nil
}

// findRow scans the results table for an exact INN match.
// Column layout: #, organization name, INN, join date, status.
func (c *Client) findRow(doc *goquery.Document, inn string) *Membership {
	var found *Membership
	doc.Find("table.table-bordered tr").EachWithBreak(func(_ int, row *goquery.Selection) bool {
		cols := row.Find("td")
		if cols.Length() < 5 {
			return true
		}
		rowINN := strings.TrimSpace(cols.Eq(2).Text())
		if rowINN != inn {
			return true
		}
		status := strings.TrimSpace(cols.Eq(4).Text())
		found = &Membership{
			Name:     strings.TrimSpace(cols.Eq(1).Text()),
			INN:      rowINN,
			Status:   status,
			JoinDate: strings.TrimSpace(cols.Eq(3).Text()),
			IsMember: memberStatuses[strings.ToLower(status)],
		}
		return false
	})
	return found
}
