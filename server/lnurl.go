package server

import (
	"encoding/json"
	"errors"
	"fmt"

	"satsdice/domain/interfaces"

	"github.com/gofiber/fiber/v2"
)

func lnurlError(c *fiber.Ctx, reason string) error {
	return c.JSON(fiber.Map{
		"status": "ERROR",
		"reason": reason,
	})
}

// lnurlPayHandler returns the LNURL-pay parameters for a dice link. Amounts
// on the wire are millisatoshi.
func (s *FiberServer) lnurlPayHandler(c *fiber.Ctx) error {
	link, err := s.dice.GetLink(c.Context(), c.Params("linkId"))
	if err != nil {
		return lnurlError(c, "Failed to look up link")
	}
	if link == nil {
		return lnurlError(c, "Link not found")
	}

	metadata, _ := json.Marshal([][]string{
		{"text/plain", fmt.Sprintf("Dice bet: %s", link.Title)},
	})

	return c.JSON(fiber.Map{
		"tag":         "payRequest",
		"callback":    s.publicURL + "/lnurlp/cb/" + link.ID,
		"minSendable": link.MinBet * 1000,
		"maxSendable": link.MaxBet * 1000,
		"metadata":    string(metadata),
	})
}

// lnurlPayCallbackHandler hands out a bet invoice for the requested amount
func (s *FiberServer) lnurlPayCallbackHandler(c *fiber.Ctx) error {
	linkID := c.Params("linkId")
	amountMsat := c.QueryInt("amount")
	if amountMsat <= 0 {
		return lnurlError(c, "Invalid amount")
	}

	invoice, err := s.dice.CreateBetInvoice(c.Context(), linkID, int64(amountMsat))
	if err != nil {
		return lnurlError(c, err.Error())
	}

	return c.JSON(fiber.Map{
		"pr":     invoice.Bolt11,
		"routes": []string{},
		"successAction": fiber.Map{
			"tag":         "url",
			"description": "Check your roll!",
			"url":         s.publicURL + "/api/v1/outcomes/" + invoice.PaymentHash,
		},
	})
}

// lnurlWithdrawHandler returns the LNURL-withdraw parameters for a payout
// credential. The exact payout value is both the minimum and the maximum.
func (s *FiberServer) lnurlWithdrawHandler(c *fiber.Ctx) error {
	credential, err := s.withdraws.GetByUniqueHash(c.Context(), c.Params("uniqueHash"))
	if err != nil {
		return lnurlError(c, "Failed to look up withdrawal")
	}
	if credential == nil {
		return lnurlError(c, "Withdrawal not found")
	}
	if credential.Used {
		return lnurlError(c, "Withdrawal already claimed")
	}

	return c.JSON(fiber.Map{
		"tag":                "withdrawRequest",
		"callback":           s.publicURL + "/lnurlw/cb/" + credential.UniqueHash,
		"k1":                 credential.K1,
		"minWithdrawable":    credential.Value * 1000,
		"maxWithdrawable":    credential.Value * 1000,
		"defaultDescription": "satsdice payout",
	})
}

// lnurlWithdrawCallbackHandler redeems the credential against the invoice the
// player's wallet supplied. The redemption claims the credential first, so a
// second request with the same secret gets an error instead of a payment.
func (s *FiberServer) lnurlWithdrawCallbackHandler(c *fiber.Ctx) error {
	uniqueHash := c.Params("uniqueHash")
	k1 := c.Query("k1")
	pr := c.Query("pr")
	if pr == "" {
		return lnurlError(c, "Missing payment request")
	}

	credential, err := s.withdraws.GetByUniqueHash(c.Context(), uniqueHash)
	if err != nil {
		return lnurlError(c, "Failed to look up withdrawal")
	}
	if credential == nil {
		return lnurlError(c, "Withdrawal not found")
	}
	if k1 != credential.K1 {
		return lnurlError(c, "Invalid k1")
	}

	err = s.withdraws.Redeem(c.Context(), uniqueHash, pr)
	switch {
	case errors.Is(err, interfaces.ErrCredentialUsed):
		return lnurlError(c, "Withdrawal already claimed")
	case errors.Is(err, interfaces.ErrPaymentUnknown):
		// The payment may still settle; tell the wallet nothing conclusive.
		return lnurlError(c, "Payment status unknown, contact the operator")
	case err != nil:
		return lnurlError(c, "Payment failed")
	}

	return c.JSON(fiber.Map{"status": "OK"})
}
