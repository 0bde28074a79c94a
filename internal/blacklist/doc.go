// Package blacklist normalizes composite folder names against a categorized
// blacklist of non-identifying artist names (for example "various artists"
// aliases or voice-actor credits).
//
// Store persists the categories. Fixer walks a tree, asks about suspicious
// name parts that are not classified yet, and proposes renames that drop the
// blacklisted parts. ApplyRename carries out one proposal, merging into the
// target folder when the fixed name is already taken.
package blacklist
