// Package mongostore persists records as MongoDB documents using mongo-driver/v2.
//
// A record is stored as {_id, kind, attributes, version, updated_at}. Save issues a
// single UpdateOne filtered by _id and version which sets attributes.<name> for each
// changed attribute and increments the version, so a stale writer matches nothing
// and gets record.ErrConflict.
//
// Attribute names become field paths, so names containing '.' or starting with '$'
// are rejected with ErrInvalidAttributeName.
//
// # Usage
//
//	coll, err := mongostore.ConnectCollection(ctx, cfg)
//	store := mongostore.NewStore(coll)
package mongostore
