package auth

import "testing"

func TestBcryptVerifier_RoundTrip(t *testing.T) {
	t.Parallel()

	v := BcryptVerifier{}

	hash, err := v.Hash("hunter2")
	if err != nil {
		t.Fatalf("Hash error: %v", err)
	}
	if hash == "hunter2" {
		t.Fatal("hash must not equal the plaintext")
	}

	if !v.Verify(hash, "hunter2") {
		t.Fatal("expected matching password to verify")
	}
	if v.Verify(hash, "hunter3") {
		t.Fatal("expected wrong password to fail")
	}
}

func TestBcryptVerifier_GarbageStored(t *testing.T) {
	t.Parallel()

	if (BcryptVerifier{}).Verify("not-a-bcrypt-hash", "anything") {
		t.Fatal("garbage stored value must never verify")
	}
}
