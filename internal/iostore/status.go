package iostore

import (
	"fmt"

	"github.com/mfglab/yieldline/schema"
)

// PrintStoreStatus prints status information for one store.
func PrintStoreStatus(label string, status schema.StoreStatus) {
	fmt.Printf("%s Backend: %s\n", label, status.Backend)
	fmt.Printf("Connected: %t\n", status.Connected)
	if !status.Connected {
		return
	}
	for table, size := range status.TableSizes {
		fmt.Printf("  %s: %d rows\n", table, size)
	}
}
