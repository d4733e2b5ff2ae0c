package dist

import (
	"github.com/pkg/errors"
	"github.com/sugawarayuuta/sonnet"
)

// token is the payload of every barrier message.
type token struct {
	Rank  int    `json:"rank"`
	Size  int    `json:"size"`
	Round uint64 `json:"round"`
}

func (t token) encode() ([]byte, error) {
	data, err := sonnet.Marshal(t)
	if err != nil {
		return nil, errors.Wrap(err, "failed to encode barrier token")
	}
	return data, nil
}

func decodeToken(data []byte) (token, error) {
	var t token
	if err := sonnet.Unmarshal(data, &t); err != nil {
		return token{}, errors.Wrap(err, "failed to decode barrier token")
	}
	return t, nil
}
