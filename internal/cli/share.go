package cli

import (
	"net/url"
	"strings"
)

// qrService renders a share link as a scannable QR image.
const qrService = "https://api.qrserver.com/v1/create-qr-code/"

// ShareLink builds the recipient link carrying the plaintext key as a
// query parameter. The link is the delivery channel for the key, so it
// should only be sent to the recipient.
func ShareLink(base, key string) string {
	return strings.TrimRight(base, "/") + "?key=" + url.QueryEscape(key)
}

// QRCodeURL returns an image URL that encodes the share link.
func QRCodeURL(link string) string {
	return qrService + "?size=220x220&data=" + url.QueryEscape(link)
}

// ParseShareLink extracts the key from a pasted share link. It accepts
// a bare key unchanged, so recipients can paste either form.
func ParseShareLink(s string) string {
	s = strings.TrimSpace(s)
	if !strings.Contains(s, "?") {
		return s
	}
	u, err := url.Parse(s)
	if err != nil {
		return s
	}
	if key := u.Query().Get("key"); key != "" {
		return key
	}
	return s
}
