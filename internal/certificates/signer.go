package certificates

import (
	"crypto"
	"crypto/x509"
	"encoding/pem"
	"errors"
	"fmt"
	"os"

	"github.com/smallstep/pkcs7"
	"go.uber.org/zap"

	"carbon-connect/marketplace-backend/pkg/apperrors"
)

// SignedSuffix is appended to the unsigned filename to derive the signed
// one, so the pairing is recoverable from filenames alone.
const SignedSuffix = ".p7m"

// SignedFilename derives the signed artifact name from the unsigned one.
func SignedFilename(unsigned string) string {
	return unsigned + SignedSuffix
}

// SigningIdentity is the platform certificate and private key.
type SigningIdentity struct {
	Certificate *x509.Certificate
	Key         crypto.PrivateKey
}

// LoadSigningIdentity reads the platform certificate and private key from
// PEM files. The key-material provider owns rotation; this only parses.
func LoadSigningIdentity(certPath, keyPath string) (*SigningIdentity, error) {
	certPEM, err := os.ReadFile(certPath)
	if err != nil {
		return nil, fmt.Errorf("read signing certificate: %w", err)
	}
	block, _ := pem.Decode(certPEM)
	if block == nil || block.Type != "CERTIFICATE" {
		return nil, errors.New("signing certificate is not a PEM certificate")
	}
	cert, err := x509.ParseCertificate(block.Bytes)
	if err != nil {
		return nil, fmt.Errorf("parse signing certificate: %w", err)
	}

	keyPEM, err := os.ReadFile(keyPath)
	if err != nil {
		return nil, fmt.Errorf("read signing key: %w", err)
	}
	keyBlock, _ := pem.Decode(keyPEM)
	if keyBlock == nil {
		return nil, errors.New("signing key is not PEM encoded")
	}

	key, err := parsePrivateKey(keyBlock.Bytes)
	if err != nil {
		return nil, fmt.Errorf("parse signing key: %w", err)
	}

	return &SigningIdentity{Certificate: cert, Key: key}, nil
}

func parsePrivateKey(der []byte) (crypto.PrivateKey, error) {
	if key, err := x509.ParsePKCS8PrivateKey(der); err == nil {
		return key, nil
	}
	if key, err := x509.ParsePKCS1PrivateKey(der); err == nil {
		return key, nil
	}
	if key, err := x509.ParseECPrivateKey(der); err == nil {
		return key, nil
	}
	return nil, errors.New("unsupported private key format")
}

// Signer produces CMS (PKCS#7) SignedData envelopes over artifact bytes.
// The envelope embeds the content, so verification needs only the platform
// certificate.
type Signer struct {
	identity *SigningIdentity
	logger   *zap.Logger
}

func NewSigner(identity *SigningIdentity, logger *zap.Logger) *Signer {
	return &Signer{identity: identity, logger: logger}
}

// Sign wraps the artifact's exact bytes in a DER-encoded CMS SignedData
// envelope. The signed content is produced entirely in memory; nothing is
// written to disk here, so a failure cannot orphan a partial signed file.
func (s *Signer) Sign(artifact *Artifact) (*Artifact, error) {
	if s.identity == nil {
		return nil, &apperrors.SigningError{Err: errors.New("signing identity not configured")}
	}

	signedData, err := pkcs7.NewSignedData(artifact.Content)
	if err != nil {
		return nil, s.signFailure(artifact, err)
	}
	if err := signedData.AddSigner(s.identity.Certificate, s.identity.Key, pkcs7.SignerInfoConfig{}); err != nil {
		return nil, s.signFailure(artifact, err)
	}
	der, err := signedData.Finish()
	if err != nil {
		return nil, s.signFailure(artifact, err)
	}

	return &Artifact{
		Filename: SignedFilename(artifact.Filename),
		Content:  der,
	}, nil
}

func (s *Signer) signFailure(artifact *Artifact, err error) error {
	s.logger.Error("Certificate signing failed",
		zap.String("filename", artifact.Filename),
		zap.Error(err))
	return &apperrors.SigningError{Err: err}
}
