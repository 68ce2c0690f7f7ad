package settlement

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/fvl-lang/fvl/ir"
	"github.com/fvl-lang/fvl/pkg/utils"
)

// Descriptor identifies the deployed settlement contract a Submitter
// anchors against. It is loaded from a small JSON file rather than flags,
// so redeploying the contract never requires a command-line change.
type Descriptor struct {
	Address  string `json:"address"`
	Deployer string `json:"deployer"`
	Network  string `json:"network"`
	RPCURL   string `json:"rpc_url"`
}

// LoadDescriptor reads the contract descriptor named by FVL_CONTRACT_FILE
// (default contract.json in the working directory).
func LoadDescriptor() (Descriptor, error) {
	path := utils.EnvOrDefault("FVL_CONTRACT_FILE", "contract.json")
	data, err := os.ReadFile(path)
	if err != nil {
		return Descriptor{}, fmt.Errorf("read contract descriptor: %w", err)
	}
	var d Descriptor
	if err := json.Unmarshal(data, &d); err != nil {
		return Descriptor{}, fmt.Errorf("decode contract descriptor: %w", err)
	}
	if d.Address == "" {
		return Descriptor{}, fmt.Errorf("contract descriptor %s: missing address", path)
	}
	return d, nil
}

// ParseAddress parses the descriptor's Address field as an ir.Address.
func (d Descriptor) ParseAddress() (ir.Address, error) {
	return ir.ParseAddress(d.Address)
}
