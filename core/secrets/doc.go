// Package secrets encrypts and decrypts per-user credential secrets.
//
// Secrets are stored as iv:authTag:ciphertext in hexadecimal, sealed with
// AES-256-GCM. The format matches what the surrounding DNS manager product
// writes, so rows created there decrypt here and vice versa.
//
// Decryption fails closed: any malformed or unauthenticated secret yields an
// error wrapping ErrDecrypt, which callers contain at the credential
// granularity rather than letting it abort a run.
package secrets
