// Package hclcfg loads HCL configuration files into the same nested
// namespace mapping the YAML path produces, so both formats flow through a
// single resolver. Blocks become nested maps, attributes become scalar or
// collection values.
package hclcfg
