package common

// TokenEnvName is the environment variable consulted by the CLI when no
// --token flag is given.
const TokenEnvName = "SECURESTORAGE_TOKEN"

// DefaultContentType labels uploads that arrive without a content type.
const DefaultContentType = "application/octet-stream"

// ProfilePhotoPrefix is the conventional blob prefix of an owner's profile photo.
const ProfilePhotoPrefix = "profiles/"
