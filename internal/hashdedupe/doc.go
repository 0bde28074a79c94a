// Package hashdedupe reconciles file names with their MD5 content hash.
//
// Engine walks the dedupe roots, offers to rename files whose name is not
// their hash and asks which copy to delete when two files share content.
// The resulting hash to path table replaces the md5s table of a SQLite
// database shared with external tools; Store keeps a numbered backup of the
// previous database before every write.
package hashdedupe
