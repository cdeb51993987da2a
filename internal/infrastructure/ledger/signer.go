package ledger

import (
	"crypto/ed25519"
	"encoding/base64"
	"encoding/hex"
	"fmt"

	"github.com/btcsuite/btcd/btcutil/bech32"
	"golang.org/x/crypto/blake2b"

	"github.com/altaire/deepbook_trader/internal/config"
)

const ed25519Flag = 0x00

// privkeyHRP is the human-readable part of the bech32 private key export
// format ("suiprivkey1...").
const privkeyHRP = "suiprivkey"

// intentSigning is the prefix committed over together with the transaction
// bytes: scope TransactionData, version 0, app id Sui.
var intentSigning = []byte{0x00, 0x00, 0x00}

// Signer holds the resolved operator key. Credential variants are resolved
// here exactly once; callers never branch on key representation again.
type Signer struct {
	priv    ed25519.PrivateKey
	address string
}

// NewSigner resolves a tagged credential into a signer. Unsupported kinds
// and unsupported key schemes are construction errors.
func NewSigner(cred config.Credential) (*Signer, error) {
	var seed []byte
	switch cred.Kind {
	case config.CredentialKeystore:
		raw, err := base64.StdEncoding.DecodeString(cred.Value)
		if err != nil {
			return nil, fmt.Errorf("malformed keystore credential: %w", err)
		}
		if len(raw) != 1+ed25519.SeedSize {
			return nil, fmt.Errorf("keystore credential must be %d bytes, got %d", 1+ed25519.SeedSize, len(raw))
		}
		if raw[0] != ed25519Flag {
			return nil, fmt.Errorf("unsupported key scheme flag 0x%02x", raw[0])
		}
		seed = raw[1:]
	case config.CredentialSuiPrivkey:
		hrp, words, err := bech32.Decode(cred.Value)
		if err != nil {
			return nil, fmt.Errorf("malformed suiprivkey credential: %w", err)
		}
		if hrp != privkeyHRP {
			return nil, fmt.Errorf("suiprivkey credential has prefix %q, want %q", hrp, privkeyHRP)
		}
		raw, err := bech32.ConvertBits(words, 5, 8, false)
		if err != nil {
			return nil, fmt.Errorf("malformed suiprivkey credential: %w", err)
		}
		if len(raw) != 1+ed25519.SeedSize {
			return nil, fmt.Errorf("suiprivkey credential must carry %d bytes, got %d", 1+ed25519.SeedSize, len(raw))
		}
		if raw[0] != ed25519Flag {
			return nil, fmt.Errorf("unsupported key scheme flag 0x%02x", raw[0])
		}
		seed = raw[1:]
	case config.CredentialHexSeed:
		raw, err := hex.DecodeString(cred.Value)
		if err != nil {
			return nil, fmt.Errorf("malformed hex credential: %w", err)
		}
		if len(raw) != ed25519.SeedSize {
			return nil, fmt.Errorf("hex credential must be %d bytes, got %d", ed25519.SeedSize, len(raw))
		}
		seed = raw
	default:
		return nil, fmt.Errorf("unsupported credential kind %q", cred.Kind)
	}

	priv := ed25519.NewKeyFromSeed(seed)
	return &Signer{
		priv:    priv,
		address: deriveAddress(priv.Public().(ed25519.PublicKey)),
	}, nil
}

// Address is the ledger address controlled by this signer.
func (s *Signer) Address() string {
	return s.address
}

// SignTransaction produces the serialized signature over the transaction
// bytes: flag || ed25519 signature || public key, base64 encoded.
func (s *Signer) SignTransaction(txBytes []byte) string {
	msg := make([]byte, 0, len(intentSigning)+len(txBytes))
	msg = append(msg, intentSigning...)
	msg = append(msg, txBytes...)
	digest := blake2b.Sum256(msg)

	sig := ed25519.Sign(s.priv, digest[:])
	pub := s.priv.Public().(ed25519.PublicKey)

	serialized := make([]byte, 0, 1+len(sig)+len(pub))
	serialized = append(serialized, ed25519Flag)
	serialized = append(serialized, sig...)
	serialized = append(serialized, pub...)
	return base64.StdEncoding.EncodeToString(serialized)
}

// deriveAddress hashes flag || pubkey into the 32-byte account address.
func deriveAddress(pub ed25519.PublicKey) string {
	buf := make([]byte, 0, 1+len(pub))
	buf = append(buf, ed25519Flag)
	buf = append(buf, pub...)
	sum := blake2b.Sum256(buf)
	return "0x" + hex.EncodeToString(sum[:])
}
