package utils

import (
	"crypto"
	"crypto/rand"
	"crypto/rsa"
	"crypto/sha256"
	"crypto/x509"
	"encoding/base64"
	"encoding/pem"
	"errors"
)

// GenerateKeyPair generates a new RSA private key of the given size.
func GenerateKeyPair(bits int) (*rsa.PrivateKey, error) {
	return rsa.GenerateKey(rand.Reader, bits)
}

// PrivateKeyToBytes encodes the private key as a PKCS1 PEM block.
func PrivateKeyToBytes(priv *rsa.PrivateKey) []byte {
	return pem.EncodeToMemory(
		&pem.Block{
			Type:  "RSA PRIVATE KEY",
			Bytes: x509.MarshalPKCS1PrivateKey(priv),
		},
	)
}

// BytesToPrivateKey decodes a PKCS1 PEM block.
func BytesToPrivateKey(priv []byte) (*rsa.PrivateKey, error) {
	block, _ := pem.Decode(priv)
	if block == nil {
		return nil, errors.New("no PEM block found")
	}
	return x509.ParsePKCS1PrivateKey(block.Bytes)
}

// PublicKeyToBytes encodes the public key as a PKIX PEM block.
func PublicKeyToBytes(pub *rsa.PublicKey) ([]byte, error) {
	pubASN1, err := x509.MarshalPKIXPublicKey(pub)
	if err != nil {
		return nil, err
	}
	return pem.EncodeToMemory(&pem.Block{Type: "PUBLIC KEY", Bytes: pubASN1}), nil
}

// BytesToPublicKey decodes a PKIX PEM block holding an RSA key.
func BytesToPublicKey(pub []byte) (*rsa.PublicKey, error) {
	block, _ := pem.Decode(pub)
	if block == nil {
		return nil, errors.New("no PEM block found")
	}
	ifc, err := x509.ParsePKIXPublicKey(block.Bytes)
	if err != nil {
		return nil, err
	}
	key, ok := ifc.(*rsa.PublicKey)
	if !ok {
		return nil, errors.New("not an RSA public key")
	}
	return key, nil
}

// PublicKeyToAddress is the ledger address of a key: base64 of its PEM encoding.
func PublicKeyToAddress(pub *rsa.PublicKey) (string, error) {
	b, err := PublicKeyToBytes(pub)
	if err != nil {
		return "", err
	}
	return base64.StdEncoding.EncodeToString(b), nil
}

// AddressToPublicKey reverses PublicKeyToAddress.
func AddressToPublicKey(address string) (*rsa.PublicKey, error) {
	b, err := base64.StdEncoding.DecodeString(address)
	if err != nil {
		return nil, err
	}
	return BytesToPublicKey(b)
}

// Hash message using SHA256
func SHA256(msg []byte) []byte {
	digest := sha256.Sum256(msg)
	return digest[:]
}

// Sign a message's SHA256 digest with provided private key.
func Sign(msg []byte, sk *rsa.PrivateKey) ([]byte, error) {
	var opts rsa.PSSOptions
	opts.SaltLength = rsa.PSSSaltLengthAuto
	return rsa.SignPSS(rand.Reader, sk, crypto.SHA256, SHA256(msg), &opts)
}

// Verify the given signature matches the message.
func Verify(msg []byte, pk *rsa.PublicKey, signature []byte) bool {
	var opts rsa.PSSOptions
	opts.SaltLength = rsa.PSSSaltLengthAuto
	return rsa.VerifyPSS(pk, crypto.SHA256, SHA256(msg), signature, &opts) == nil
}
