package version

// Version is the single source of truth for the nsi version.
// Update here for releases; the CLI and build tooling read this value.
const Version = "0.3.0"
