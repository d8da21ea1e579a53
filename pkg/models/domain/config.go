package domain

import "fmt"

type WarehousePlatform string

const (
	PlatformSnowflake  WarehousePlatform = "snowflake"
	PlatformDatabricks WarehousePlatform = "databricks"
)

// WarehouseProfile names a configured remote claims warehouse.
type WarehouseProfile struct {
	Name     string
	Platform WarehousePlatform
}

func (p WarehouseProfile) String() string {
	return fmt.Sprintf("%s:%s", p.Platform, p.Name)
}
