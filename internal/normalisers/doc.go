// Package normalisers contains the per-provider record mappings.
//
// Each subpackage turns one provider's raw API records into
// domain.Item values. Normalisation is pure: identical input always
// yields an identical item, and nothing here touches the network or
// the filesystem. Connectors fetch, normalisers map.
package normalisers
