package badger

import (
	"github.com/google/uuid"
)

// Key Namespace
// =============
//
// Namespace     Prefix   Key Format                     Value
// ------------  -------  -----------------------------  -----------------
// Nodes         "n:"     n:<uuid>                       record (JSON)
// Children      "c:"     c:<parentUUID>:<childName>     childUUID (bytes)
// File Content  "d:"     d:<uuid>                       raw bytes
//
// Children keys sort by name within a parent, so a prefix scan lists a
// directory in lexical order.

const (
	prefixNode  = "n:"
	prefixChild = "c:"
	prefixData  = "d:"
)

func keyNode(id uuid.UUID) []byte {
	return []byte(prefixNode + id.String())
}

func keyChild(parentID uuid.UUID, name string) []byte {
	return []byte(prefixChild + parentID.String() + ":" + name)
}

// keyChildPrefix is the range scan prefix for the children of parentID.
func keyChildPrefix(parentID uuid.UUID) []byte {
	return []byte(prefixChild + parentID.String() + ":")
}

func keyData(id uuid.UUID) []byte {
	return []byte(prefixData + id.String())
}
