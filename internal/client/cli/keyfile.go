package cli

import (
	"encoding/hex"
	"errors"
	"fmt"
	"os"
	"strings"

	group "github.com/bytemare/crypto"

	"github.com/dmitrijs2005/keyshare/internal/cryptox"
	"github.com/dmitrijs2005/keyshare/internal/filex"
)

// loadOrCreateHolderKey reads the holder key from path, creating and
// saving a new one when the file does not exist.
func loadOrCreateHolderKey(path string) (*group.Scalar, *cryptox.HolderKey, bool, error) {
	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		sk, pk := cryptox.NewHolderKey()
		encoded := hex.EncodeToString(cryptox.EncodeHolderSecret(sk))
		if err := filex.WriteSecretFile(path, []byte(encoded)); err != nil {
			return nil, nil, false, err
		}
		return sk, pk, true, nil
	}
	if err != nil {
		return nil, nil, false, fmt.Errorf("read key file: %w", err)
	}

	raw, err := hex.DecodeString(strings.TrimSpace(string(data)))
	if err != nil {
		return nil, nil, false, fmt.Errorf("key file %s: %w", path, err)
	}
	sk, pk, err := cryptox.DecodeHolderSecret(raw)
	if err != nil {
		return nil, nil, false, fmt.Errorf("key file %s: %w", path, err)
	}
	return sk, pk, false, nil
}
