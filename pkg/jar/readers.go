// SPDX-License-Identifier: EPL-2.0

package jar

import (
	"fmt"

	"olympos.io/encoding/edn"
)

// MergeReaderMaps merges two EDN reader-registration maps, returning the
// serialized union. Keys present in both maps take the incoming value
// (last-writer-wins per key). Unparseable content is fatal: a descriptor
// that cannot be read would poison every namespace in the merged archive.
func MergeReaderMaps(existing, incoming []byte) ([]byte, error) {
	base, err := decodeReaderMap(existing)
	if err != nil {
		return nil, fmt.Errorf("existing descriptor: %w", err)
	}
	overlay, err := decodeReaderMap(incoming)
	if err != nil {
		return nil, fmt.Errorf("incoming descriptor: %w", err)
	}

	for k, v := range overlay {
		base[k] = v
	}

	merged, err := edn.Marshal(base)
	if err != nil {
		return nil, fmt.Errorf("failed to serialize merged descriptor: %w", err)
	}
	return merged, nil
}

func decodeReaderMap(data []byte) (map[interface{}]interface{}, error) {
	m := map[interface{}]interface{}{}
	if err := edn.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("failed to parse reader descriptor: %w", err)
	}
	return m, nil
}
