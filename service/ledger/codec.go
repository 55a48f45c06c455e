package ledger

import (
	"encoding/binary"

	"github.com/viant/teller/model"
)

// recordSize is the number of page bytes an encoded account occupies.
const recordSize = 16

func encode(account model.Account) []byte {
	data := make([]byte, recordSize)
	binary.LittleEndian.PutUint64(data[0:8], uint64(int64(account.CustomerID)))
	binary.LittleEndian.PutUint64(data[8:16], uint64(int64(account.Balance)))
	return data
}

func decode(data []byte) (model.Account, bool) {
	if len(data) < recordSize {
		return model.Account{}, false
	}
	return model.Account{
		CustomerID: int(int64(binary.LittleEndian.Uint64(data[0:8]))),
		Balance:    int(int64(binary.LittleEndian.Uint64(data[8:16]))),
	}, true
}
