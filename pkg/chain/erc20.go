package chain

import (
	"fmt"
	"strings"
	"sync"

	"github.com/ethereum/go-ethereum/accounts/abi"
)

// Minimal ERC-20 surface: payroll only needs balance reads, the token's
// decimal scale, and transfers.
const erc20ABIJSON = `[
  {"constant":true,"inputs":[{"name":"owner","type":"address"}],"name":"balanceOf","outputs":[{"name":"","type":"uint256"}],"type":"function"},
  {"constant":true,"inputs":[],"name":"decimals","outputs":[{"name":"","type":"uint8"}],"type":"function"},
  {"constant":false,"inputs":[{"name":"to","type":"address"},{"name":"value","type":"uint256"}],"name":"transfer","outputs":[{"name":"","type":"bool"}],"type":"function"}
]`

var (
	erc20ABIOnce sync.Once
	erc20ABI     abi.ABI
	erc20ABIErr  error
)

func loadERC20ABI() (abi.ABI, error) {
	erc20ABIOnce.Do(func() {
		erc20ABI, erc20ABIErr = abi.JSON(strings.NewReader(erc20ABIJSON))
		if erc20ABIErr != nil {
			erc20ABIErr = fmt.Errorf("parsing erc20 abi: %w", erc20ABIErr)
		}
	})
	return erc20ABI, erc20ABIErr
}
