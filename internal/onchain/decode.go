/**
 * Copyright 2025-present Coinbase Global, Inc.
 *
 * Licensed under the Apache License, Version 2.0 (the "License");
 * you may not use this file except in compliance with the License.
 * You may obtain a copy of the License at
 *
 *  http://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIS,
 * WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 * See the License for the specific language governing permissions and
 * limitations under the License.
 */

package onchain

import (
	"bytes"
	"fmt"

	"wallet-accounting-go/internal/models"

	"github.com/btcsuite/btcd/btcutil"
	"github.com/btcsuite/btcd/chaincfg"
	"github.com/btcsuite/btcd/txscript"
	"github.com/btcsuite/btcd/wire"
)

// NetworkParams maps a configured network name to its chain parameters.
func NetworkParams(network string) (*chaincfg.Params, error) {
	switch network {
	case "mainnet":
		return &chaincfg.MainNetParams, nil
	case "testnet":
		return &chaincfg.TestNet3Params, nil
	case "signet":
		return &chaincfg.SigNetParams, nil
	case "regtest":
		return &chaincfg.RegressionNetParams, nil
	default:
		return nil, fmt.Errorf("unknown network: %s", network)
	}
}

// DecodeOutputs deserializes a raw transaction and resolves each output to
// its value and destination addresses. Outputs whose script does not encode
// a standard address (OP_RETURN, bare multisig) come back with no addresses;
// they still count toward the transaction total but can never be attributed
// to an account.
func DecodeOutputs(rawTx []byte, params *chaincfg.Params) ([]models.Vout, error) {
	var msgTx wire.MsgTx
	if err := msgTx.Deserialize(bytes.NewReader(rawTx)); err != nil {
		return nil, fmt.Errorf("failed to deserialize transaction: %w", err)
	}

	vouts := make([]models.Vout, 0, len(msgTx.TxOut))
	for n, txOut := range msgTx.TxOut {
		vout := models.Vout{
			N:     n,
			Value: btcutil.Amount(txOut.Value),
		}
		_, addrs, _, err := txscript.ExtractPkScriptAddrs(txOut.PkScript, params)
		if err == nil {
			for _, addr := range addrs {
				vout.Addresses = append(vout.Addresses, addr.EncodeAddress())
			}
		}
		vouts = append(vouts, vout)
	}
	return vouts, nil
}

// AttributeOutputs sums the value of the outputs paying to one of the owned
// addresses and reports which of those addresses were matched. Change
// outputs and outputs destined for other wallets are left out.
func AttributeOutputs(vouts []models.Vout, owned []string) (btcutil.Amount, []string) {
	ownedSet := make(map[string]struct{}, len(owned))
	for _, address := range owned {
		ownedSet[address] = struct{}{}
	}

	var total btcutil.Amount
	matchedSet := make(map[string]struct{})
	var matched []string
	for _, vout := range vouts {
		for _, address := range vout.Addresses {
			if _, ok := ownedSet[address]; !ok {
				continue
			}
			total += vout.Value
			if _, seen := matchedSet[address]; !seen {
				matchedSet[address] = struct{}{}
				matched = append(matched, address)
			}
			break
		}
	}
	return total, matched
}
