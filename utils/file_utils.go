package utils

import (
	"crypto/rsa"
	"errors"
	"log"
	"os"
)

// ParseKeyFile reads the RSA key at fPath, or generates and saves a new one when createNewKey
// is set or the file does not exist yet.
func ParseKeyFile(fPath string, createNewKey bool, bits int) (*rsa.PrivateKey, error) {
	if fPath == "" {
		return nil, errors.New("file path is missing")
	}
	if _, err := os.Stat(fPath); createNewKey || errors.Is(err, os.ErrNotExist) {
		log.Println("Generating a new key")
		userKey, err := GenerateKeyPair(bits)
		if err != nil {
			return nil, err
		}
		if err := SavePrivateKeyToFile(userKey, fPath); err != nil {
			return nil, err
		}
		return userKey, nil
	}
	userKey, err := ReadKeyFromFPath(fPath)
	if err != nil {
		log.Printf("Failed to read your key from path %s with error %s", fPath, err)
		return nil, err
	}
	return userKey, nil
}

func SavePrivateKeyToFile(privkey *rsa.PrivateKey, fpath string) error {
	if err := os.WriteFile(fpath, PrivateKeyToBytes(privkey), 0600); err != nil {
		log.Println("failed to save key in", fpath, err)
		return err
	}
	log.Println("Saved private key in file", fpath)
	return nil
}

func ReadKeyFromFPath(fPath string) (*rsa.PrivateKey, error) {
	fileContent, err := os.ReadFile(fPath)
	if err != nil {
		return nil, err
	}
	if len(fileContent) == 0 {
		return nil, errors.New("key file is empty, please check filepath")
	}
	return BytesToPrivateKey(fileContent)
}
