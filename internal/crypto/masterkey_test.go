// Copyright (c) 2025 Keywarden Team
// Keywarden - workspace encryption key manager
// This source code is licensed under the MIT license found in the LICENSE file.

package crypto

import (
	"errors"
	"strings"
	"testing"
)

func TestGenerateAndParseRoundTrip(t *testing.T) {
	k, err := GenerateMasterKey()
	if err != nil {
		t.Fatalf("GenerateMasterKey: %v", err)
	}

	encoded := k.String()
	if !strings.HasPrefix(encoded, "kw1.") {
		t.Fatalf("encoded key missing prefix: %q", encoded)
	}

	parsed, err := ParseMasterKey(encoded)
	if err != nil {
		t.Fatalf("ParseMasterKey: %v", err)
	}
	if parsed.String() != encoded {
		t.Fatalf("round trip mismatch: %q != %q", parsed.String(), encoded)
	}
}

func TestParseMasterKey_RejectsMalformed(t *testing.T) {
	cases := []struct {
		name  string
		input string
	}{
		{"empty", ""},
		{"no prefix", "AAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAA="},
		{"bad base64", "kw1.!!!not-base64!!!"},
		{"short key", "kw1.AAAA"},
		{"wrong prefix", "kw2.AAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAA="},
	}
	for _, tc := range cases {
		if _, err := ParseMasterKey(tc.input); !errors.Is(err, ErrMalformedKey) {
			t.Errorf("%s: expected ErrMalformedKey, got %v", tc.name, err)
		}
	}
}

func TestParseMasterKey_TrimsWhitespace(t *testing.T) {
	k, err := GenerateMasterKey()
	if err != nil {
		t.Fatalf("GenerateMasterKey: %v", err)
	}
	if _, err := ParseMasterKey("  " + k.String() + "\n"); err != nil {
		t.Fatalf("expected padded key to parse, got %v", err)
	}
}

func TestSealOpen_RoundTrip(t *testing.T) {
	k, err := GenerateMasterKey()
	if err != nil {
		t.Fatalf("GenerateMasterKey: %v", err)
	}

	nonce, ct, err := k.Seal("db_password", "hunter2")
	if err != nil {
		t.Fatalf("Seal: %v", err)
	}
	got, err := k.Open("db_password", nonce, ct)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	if got != "hunter2" {
		t.Fatalf("plaintext mismatch: got %q", got)
	}
}

func TestOpen_FailsForWrongName(t *testing.T) {
	k, _ := GenerateMasterKey()
	nonce, ct, err := k.Seal("api_token", "secret")
	if err != nil {
		t.Fatalf("Seal: %v", err)
	}
	if _, err := k.Open("other_name", nonce, ct); err == nil {
		t.Fatal("expected decryption failure when name differs")
	}
}

func TestOpen_FailsForWrongKey(t *testing.T) {
	k1, _ := GenerateMasterKey()
	k2, _ := GenerateMasterKey()
	nonce, ct, err := k1.Seal("api_token", "secret")
	if err != nil {
		t.Fatalf("Seal: %v", err)
	}
	if _, err := k2.Open("api_token", nonce, ct); err == nil {
		t.Fatal("expected decryption failure under different key")
	}
}

func TestVerifier_StableAndKeySpecific(t *testing.T) {
	k1, _ := GenerateMasterKey()
	k2, _ := GenerateMasterKey()

	v1a, err := k1.Verifier()
	if err != nil {
		t.Fatalf("Verifier: %v", err)
	}
	v1b, _ := k1.Verifier()
	v2, _ := k2.Verifier()

	if v1a != v1b {
		t.Fatalf("verifier not stable for same key: %q vs %q", v1a, v1b)
	}
	if v1a == v2 {
		t.Fatal("verifier identical for distinct keys")
	}
	// Same transfer encoding must reproduce the same verifier on import.
	imported, err := ParseMasterKey(k1.String())
	if err != nil {
		t.Fatalf("ParseMasterKey: %v", err)
	}
	vi, _ := imported.Verifier()
	if vi != v1a {
		t.Fatalf("imported key verifier mismatch: %q vs %q", vi, v1a)
	}
}

func TestDestroy_InvalidatesKey(t *testing.T) {
	k, _ := GenerateMasterKey()
	k.Destroy()
	if _, _, err := k.Seal("n", "v"); err == nil {
		t.Fatal("expected Seal to fail after Destroy")
	}
}
