// Package artistmatch clusters unsorted folders with the library's artist
// folders.
//
// Every existing artist folder is scored against every "+"-separated token of
// the unsorted folder names. Pairs already judged in the pair list short
// circuit; identical token sets match automatically; pairs in the ambiguous
// band suspend the scan with a Request until the driver resumes it with a
// yes/no answer. Each unordered pair is asked about at most once per scan.
//
// ApplyMatches performs the follow-up move of matched folders into the
// known-names folder of the inbox.
package artistmatch
