package infrastructure

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	log "github.com/sirupsen/logrus"
)

// LnurlAddressResolver implements the AddressResolver interface with the
// LNURL-pay flow: look up the address's pay endpoint, then request an invoice
// for the target amount from its callback.
type LnurlAddressResolver struct {
	httpClient *http.Client
}

// NewLnurlAddressResolver creates a new LNURL-pay address resolver
func NewLnurlAddressResolver() *LnurlAddressResolver {
	return &LnurlAddressResolver{
		httpClient: &http.Client{Timeout: 15 * time.Second},
	}
}

type lnurlPayResponse struct {
	Callback    string `json:"callback"`
	MinSendable int64  `json:"minSendable"`
	MaxSendable int64  `json:"maxSendable"`
	Tag         string `json:"tag"`
	Reason      string `json:"reason,omitempty"`
	Status      string `json:"status,omitempty"`
}

type lnurlInvoiceResponse struct {
	Pr     string `json:"pr"`
	Status string `json:"status,omitempty"`
	Reason string `json:"reason,omitempty"`
}

// ResolveInvoice turns a name@domain Lightning address into a bolt11 invoice
// for the given amount in sats.
func (r *LnurlAddressResolver) ResolveInvoice(ctx context.Context, lnAddress string, amountSat int64) (string, error) {
	name, domain, err := splitAddress(lnAddress)
	if err != nil {
		return "", err
	}

	payURL := fmt.Sprintf("https://%s/.well-known/lnurlp/%s", domain, name)
	var pay lnurlPayResponse
	if err := r.getJSON(ctx, payURL, &pay); err != nil {
		return "", fmt.Errorf("failed to look up address %s: %w", lnAddress, err)
	}
	if pay.Status == "ERROR" {
		return "", fmt.Errorf("address %s rejected lookup: %s", lnAddress, pay.Reason)
	}
	if pay.Tag != "payRequest" || pay.Callback == "" {
		return "", fmt.Errorf("address %s did not return a pay request", lnAddress)
	}

	amountMsat := amountSat * 1000
	if amountMsat < pay.MinSendable || amountMsat > pay.MaxSendable {
		return "", fmt.Errorf("amount %d sat outside sendable range of %s", amountSat, lnAddress)
	}

	callbackURL, err := url.Parse(pay.Callback)
	if err != nil {
		return "", fmt.Errorf("address %s returned invalid callback: %w", lnAddress, err)
	}
	query := callbackURL.Query()
	query.Set("amount", fmt.Sprintf("%d", amountMsat))
	callbackURL.RawQuery = query.Encode()

	var invoice lnurlInvoiceResponse
	if err := r.getJSON(ctx, callbackURL.String(), &invoice); err != nil {
		return "", fmt.Errorf("failed to request invoice from %s: %w", lnAddress, err)
	}
	if invoice.Status == "ERROR" {
		return "", fmt.Errorf("address %s rejected invoice request: %s", lnAddress, invoice.Reason)
	}
	if invoice.Pr == "" {
		return "", fmt.Errorf("address %s returned no invoice", lnAddress)
	}

	log.WithFields(log.Fields{
		"address": lnAddress,
		"amount":  amountSat,
	}).Debug("Resolved Lightning address to invoice")

	return invoice.Pr, nil
}

func (r *LnurlAddressResolver) getJSON(ctx context.Context, rawURL string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return err
	}

	resp, err := r.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("unexpected status %d", resp.StatusCode)
	}

	return json.NewDecoder(resp.Body).Decode(out)
}

func splitAddress(lnAddress string) (name, domain string, err error) {
	parts := strings.Split(lnAddress, "@")
	if len(parts) != 2 || parts[0] == "" || parts[1] == "" {
		return "", "", fmt.Errorf("invalid lightning address %q", lnAddress)
	}
	return parts[0], parts[1], nil
}
