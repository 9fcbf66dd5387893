// Package vnpay implements the VNPay redirect protocol: building signed
// payment URLs and validating signed callback parameters.
package vnpay

import (
	"crypto/hmac"
	"crypto/sha512"
	"encoding/hex"
	"math"
	"net/url"
	"sort"
	"strconv"
	"strings"
	"time"
)

const (
	version = "2.1.0"
	command = "pay"

	// Both codes must equal the success sentinel for a payment to count as
	// settled: a transaction can be processed but not settled.
	successCode = "00"

	paramSecureHash     = "vnp_SecureHash"
	paramSecureHashType = "vnp_SecureHashType"
	paramTxnRef         = "vnp_TxnRef"
	paramResponseCode   = "vnp_ResponseCode"
	paramTxnStatus      = "vnp_TransactionStatus"

	dateLayout = "20060102150405"
)

// Client signs outbound payment URLs and validates inbound callbacks against
// the shared merchant secret.
type Client struct {
	tmnCode    string
	hashSecret string
	baseURL    string
	returnURL  string
	now        func() time.Time
}

// NewClient creates a new VNPay client.
func NewClient(tmnCode, hashSecret, baseURL, returnURL string) *Client {
	return &Client{
		tmnCode:    tmnCode,
		hashSecret: hashSecret,
		baseURL:    baseURL,
		returnURL:  returnURL,
		now:        time.Now,
	}
}

// BuildPaymentURL assembles the gateway redirect URL for the given amount (in
// major currency units), transaction reference and order description. The
// signature is an HMAC-SHA512 over the lexicographically sorted, URL-encoded
// parameters; the gateway recomputes it with the same sort and rejects any
// other ordering.
func (c *Client) BuildPaymentURL(amount float64, txnRef, orderInfo, clientIP string) string {
	now := c.now()

	params := url.Values{}
	params.Set("vnp_Version", version)
	params.Set("vnp_Command", command)
	params.Set("vnp_TmnCode", c.tmnCode)
	params.Set("vnp_Amount", strconv.FormatInt(int64(math.Round(amount*100)), 10))
	params.Set("vnp_CurrCode", "VND")
	params.Set(paramTxnRef, txnRef)
	params.Set("vnp_OrderInfo", orderInfo)
	params.Set("vnp_OrderType", "other")
	params.Set("vnp_Locale", "vn")
	params.Set("vnp_ReturnUrl", c.returnURL)
	params.Set("vnp_IpAddr", clientIP)
	params.Set("vnp_CreateDate", now.Format(dateLayout))
	params.Set("vnp_ExpireDate", now.Add(15*time.Minute).Format(dateLayout))

	query := canonicalQuery(params)
	signature := c.sign(query)

	return c.baseURL + "?" + query + "&" + paramSecureHash + "=" + signature
}

// ValidateCallback recomputes the signature over the callback parameters
// (minus the signature fields) and compares in constant time. Malformed or
// unsigned input validates false, never panics; the callback path has to
// shrug off garbage traffic.
func (c *Client) ValidateCallback(params url.Values) bool {
	if c.hashSecret == "" {
		return false
	}

	received := params.Get(paramSecureHash)
	if received == "" {
		return false
	}

	signed := url.Values{}
	for key, values := range params {
		if key == paramSecureHash || key == paramSecureHashType {
			continue
		}
		for _, v := range values {
			signed.Add(key, v)
		}
	}

	expected := c.sign(canonicalQuery(signed))
	return hmac.Equal([]byte(strings.ToLower(received)), []byte(expected))
}

// IsSuccess reports whether the callback carries the gateway's dual success
// sentinel on both the response code and the transaction status.
func (c *Client) IsSuccess(params url.Values) bool {
	return params.Get(paramResponseCode) == successCode &&
		params.Get(paramTxnStatus) == successCode
}

// TxnRef extracts the transaction reference (our payment id) from callback
// parameters.
func (c *Client) TxnRef(params url.Values) string {
	return params.Get(paramTxnRef)
}

// SignParams returns a copy of params with the signature field attached, the
// same way the gateway signs its callback.
func (c *Client) SignParams(params url.Values) url.Values {
	signed := url.Values{}
	for key, values := range params {
		for _, v := range values {
			signed.Add(key, v)
		}
	}
	signed.Set(paramSecureHash, c.sign(canonicalQuery(params)))
	return signed
}

// canonicalQuery renders params as a query string with keys sorted
// lexicographically and values URL-encoded. This exact form is what both
// sides sign.
func canonicalQuery(params url.Values) string {
	keys := make([]string, 0, len(params))
	for key := range params {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	var sb strings.Builder
	for i, key := range keys {
		if i > 0 {
			sb.WriteByte('&')
		}
		sb.WriteString(url.QueryEscape(key))
		sb.WriteByte('=')
		sb.WriteString(url.QueryEscape(params.Get(key)))
	}
	return sb.String()
}

func (c *Client) sign(data string) string {
	mac := hmac.New(sha512.New, []byte(c.hashSecret))
	mac.Write([]byte(data))
	return hex.EncodeToString(mac.Sum(nil))
}
