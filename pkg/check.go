package mmcheck

import (
	"encoding/base64"
	"fmt"
	"time"
)

func decodeBase64(what string, encoded string) ([]byte, error) {
	decoded, err := base64.StdEncoding.DecodeString(encoded)
	if err != nil {
		return nil, &badEncoding{What: what, error: err}
	}
	return decoded, nil
}

func (conn *connection) executeCheck(check *Check, channel *channel) error {
	startTime := time.Now()

	proof, err := decodeBase64("proof file", check.Proof)
	if err != nil {
		return err
	}
	spec := ""
	if check.Spec != nil {
		decoded, err := decodeBase64("declaration file", *check.Spec)
		if err != nil {
			return err
		}
		spec = string(decoded)
	}

	info, err := conn.database.CheckProof(check.Name, proof, spec)
	if err != nil {
		return err
	}

	conn.database.metrics.checkLatency.Observe(float64(time.Since(startTime)))

	channel.writeAckMessage(fmt.Sprintf(
		"checked %s: %d sorts, %d terms, %d axioms, %d theorems",
		info.Name, info.Sorts, info.Terms, info.Axioms, info.Theorems,
	))
	return nil
}

func (conn *connection) executeDrop(drop *Drop, channel *channel) error {
	if err := conn.database.DropEnv(drop.Name); err != nil {
		return err
	}
	channel.writeAckMessage(fmt.Sprintf("dropped %s", drop.Name))
	return nil
}
