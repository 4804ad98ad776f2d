package dex

import (
	"strings"
	"sync"

	"github.com/ethereum/go-ethereum/accounts/abi"
)

// Subset of the Uniswap V2 router02 interface.
const v2RouterABIJSON = `[
  {
    "inputs": [
      {"internalType": "uint256", "name": "amountIn", "type": "uint256"},
      {"internalType": "address[]", "name": "path", "type": "address[]"}
    ],
    "name": "getAmountsOut",
    "outputs": [{"internalType": "uint256[]", "name": "amounts", "type": "uint256[]"}],
    "stateMutability": "view",
    "type": "function"
  },
  {
    "inputs": [
      {"internalType": "uint256", "name": "amountIn", "type": "uint256"},
      {"internalType": "uint256", "name": "amountOutMin", "type": "uint256"},
      {"internalType": "address[]", "name": "path", "type": "address[]"},
      {"internalType": "address", "name": "to", "type": "address"},
      {"internalType": "uint256", "name": "deadline", "type": "uint256"}
    ],
    "name": "swapExactTokensForTokens",
    "outputs": [{"internalType": "uint256[]", "name": "amounts", "type": "uint256[]"}],
    "stateMutability": "nonpayable",
    "type": "function"
  }
]`

var (
	v2RouterABI     abi.ABI
	v2RouterABIOnce sync.Once
	v2RouterABIErr  error
)

// V2RouterABI returns the parsed router ABI.
func V2RouterABI() (abi.ABI, error) {
	v2RouterABIOnce.Do(func() {
		v2RouterABI, v2RouterABIErr = abi.JSON(strings.NewReader(v2RouterABIJSON))
	})
	return v2RouterABI, v2RouterABIErr
}
