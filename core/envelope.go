package core

import (
	"bytes"
	"crypto/hmac"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/base64"
	"encoding/hex"
	"encoding/json"
	"errors"
	"io"
	"strings"
)

const EnvelopeAlgorithmHMACSHA256 = "HMAC-SHA256"

// SignedEnvelope is the verified JSON payload of a signature.payload token.
type SignedEnvelope struct {
	Algorithm string
	Code      string
	UserID    string
	IssuedAt  int64
	Fields    map[string]any
	Payload   []byte
}

// Has reports whether the payload carried the named field.
func (e SignedEnvelope) Has(field string) bool {
	_, ok := e.Fields[field]
	return ok
}

// StringFields renders every payload field as a string, the representation
// SessionInfo uses.
func (e SignedEnvelope) StringFields() map[string]string {
	out := make(map[string]string, len(e.Fields))
	for key, value := range e.Fields {
		out[key] = readAnyString(value)
	}
	return out
}

type HMACEnvelopeVerifier struct {
	secret string
}

func NewHMACEnvelopeVerifier(secret string) *HMACEnvelopeVerifier {
	return &HMACEnvelopeVerifier{secret: secret}
}

func (v *HMACEnvelopeVerifier) Verify(token string) (SignedEnvelope, error) {
	if v == nil {
		return SignedEnvelope{}, &EnvelopeError{Code: "verifier_not_configured", Field: "verifier", Cause: ErrMalformedEnvelope}
	}
	return VerifySignedEnvelope(token, v.secret)
}

// VerifySignedEnvelope decodes token and checks its HMAC-SHA256 signature,
// computed over the still-encoded payload part and keyed by secret.
func VerifySignedEnvelope(token string, secret string) (SignedEnvelope, error) {
	encodedSig, encodedPayload, found := strings.Cut(token, ".")
	if !found || encodedSig == "" || encodedPayload == "" {
		return SignedEnvelope{}, &EnvelopeError{Code: "token_incomplete", Field: "token", Cause: ErrMalformedEnvelope}
	}

	signature, err := DecodeBase64URL(encodedSig)
	if err != nil {
		return SignedEnvelope{}, &EnvelopeError{Code: "signature_decode_failed", Field: "signature", Cause: ErrMalformedEnvelope}
	}
	payload, err := DecodeBase64URL(encodedPayload)
	if err != nil {
		return SignedEnvelope{}, &EnvelopeError{Code: "payload_decode_failed", Field: "payload", Cause: ErrMalformedEnvelope}
	}

	envelope, err := parseEnvelopePayload(payload)
	if err != nil {
		return SignedEnvelope{}, err
	}
	if envelope.Algorithm != EnvelopeAlgorithmHMACSHA256 {
		return SignedEnvelope{}, &EnvelopeError{Code: "unsupported_algorithm", Field: "algorithm", Cause: ErrUnsupportedAlgorithm}
	}

	expected := envelopeSignatureHex(encodedPayload, secret)
	actual := hex.EncodeToString(signature)
	if subtle.ConstantTimeCompare([]byte(expected), []byte(actual)) != 1 {
		return SignedEnvelope{}, &EnvelopeError{Code: "signature_mismatch", Field: "signature", Cause: ErrSignatureMismatch}
	}
	return envelope, nil
}

// SignEnvelope produces a token VerifySignedEnvelope accepts for the given
// payload bytes. The encoded parts carry no padding.
func SignEnvelope(payload []byte, secret string) string {
	encodedPayload := base64.RawURLEncoding.EncodeToString(payload)
	mac := hmac.New(sha256.New, []byte(secret))
	_, _ = mac.Write([]byte(encodedPayload))
	return base64.RawURLEncoding.EncodeToString(mac.Sum(nil)) + "." + encodedPayload
}

func envelopeSignatureHex(encodedPayload string, secret string) string {
	mac := hmac.New(sha256.New, []byte(secret))
	_, _ = mac.Write([]byte(encodedPayload))
	return hex.EncodeToString(mac.Sum(nil))
}

func parseEnvelopePayload(payload []byte) (SignedEnvelope, error) {
	decoder := json.NewDecoder(bytes.NewReader(payload))
	decoder.UseNumber()
	var fields map[string]any
	if err := decoder.Decode(&fields); err != nil || fields == nil {
		return SignedEnvelope{}, &EnvelopeError{Code: "payload_not_object", Field: "payload", Cause: ErrMalformedEnvelope}
	}
	if _, err := decoder.Token(); !errors.Is(err, io.EOF) {
		return SignedEnvelope{}, &EnvelopeError{Code: "payload_trailing_data", Field: "payload", Cause: ErrMalformedEnvelope}
	}

	algorithm, _ := fields["algorithm"].(string)
	return SignedEnvelope{
		Algorithm: algorithm,
		Code:      readAnyString(fields["code"]),
		UserID:    readAnyString(fields["user_id"]),
		IssuedAt:  readAnyInt64(fields["issued_at"]),
		Fields:    fields,
		Payload:   append([]byte(nil), payload...),
	}, nil
}

// PadBase64URL appends 4-len%4 padding characters. An input whose length is
// already a multiple of four receives four '=' characters; existing tokens
// were produced against this rule.
func PadBase64URL(value string) string {
	return value + strings.Repeat("=", 4-len(value)%4)
}

var base64URLToStd = strings.NewReplacer("-", "+", "_", "/")

// DecodeBase64URL applies PadBase64URL and decodes the result. Surplus
// padding is trimmed before decoding, and both the URL-safe and the standard
// alphabet are accepted.
func DecodeBase64URL(value string) ([]byte, error) {
	padded := PadBase64URL(value)
	normalized := strings.TrimRight(base64URLToStd.Replace(padded), "=")
	return base64.RawStdEncoding.DecodeString(normalized)
}
