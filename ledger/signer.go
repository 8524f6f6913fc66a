package ledger

import (
	"encoding/hex"
	"errors"
	"fmt"

	"go.dedis.ch/kyber/v4"
	"go.dedis.ch/kyber/v4/sign/schnorr"
	"go.dedis.ch/kyber/v4/suites"
)

var suite suites.Suite = suites.MustFind("Ed25519")

var ErrBadSignature = errors.New("bad signature")

// Signer holds the key pair a replica signs its blocks with.
type Signer struct {
	private kyber.Scalar
	public  kyber.Point
}

// NewSigner generates a fresh random key pair.
func NewSigner() *Signer {
	private := suite.Scalar().Pick(suite.RandomStream())
	return &Signer{private: private, public: suite.Point().Mul(private, nil)}
}

// DeriveSigner derives a key pair from seed. The same seed always yields the
// same keys.
func DeriveSigner(seed []byte) *Signer {
	private := suite.Scalar().Pick(suite.XOF(seed))
	return &Signer{private: private, public: suite.Point().Mul(private, nil)}
}

// PublicKey returns the hex encoding of the public key.
func (s *Signer) PublicKey() string {
	b, err := s.public.MarshalBinary()
	if err != nil {
		panic(err)
	}
	return hex.EncodeToString(b)
}

func (s *Signer) Sign(msg []byte) (string, error) {
	sig, err := schnorr.Sign(suite, s.private, msg)
	if err != nil {
		return "", fmt.Errorf("sign: %w", err)
	}
	return hex.EncodeToString(sig), nil
}

// VerifySignature checks a hex signature of msg against a hex public key.
func VerifySignature(publicKey string, msg []byte, signature string) error {
	kb, err := hex.DecodeString(publicKey)
	if err != nil {
		return fmt.Errorf("%w: public key: %w", ErrBadSignature, err)
	}
	pub := suite.Point()
	if err := pub.UnmarshalBinary(kb); err != nil {
		return fmt.Errorf("%w: public key: %w", ErrBadSignature, err)
	}
	sig, err := hex.DecodeString(signature)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrBadSignature, err)
	}
	if err := schnorr.Verify(suite, pub, msg, sig); err != nil {
		return fmt.Errorf("%w: %w", ErrBadSignature, err)
	}
	return nil
}
