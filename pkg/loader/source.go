// pkg/loader/source.go
package loader

import "github.com/David-Botos/sales-clean/pkg/model"

// Source loads the raw sales table. Failures are *model.LoadError.
type Source interface {
	Load() (*model.Table, error)
}
