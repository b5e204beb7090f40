// Package recordkeeper holds build metadata shared by the keeper binary.
package recordkeeper

// Version is the release version of the module.
const Version = "0.1.0"
