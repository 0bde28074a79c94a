package config

const (
	defaultStateDir            = "~/.local/share/curator"
	defaultLogDir              = "~/.local/share/curator/logs"
	defaultTrashDir            = "~/.local/share/curator/trash"
	defaultNewDir              = "!new"
	defaultKnownNamesDir       = "!KNOW_NAMES"
	defaultCensoredTag         = "[Censored]"
	defaultSimilarityThreshold = 80
	defaultPairListFile        = "GSAF_bl_wl_lists.txt"
	defaultBlacklistFile       = "black_list_artist.txt"
	defaultBlacklistCategory   = "VA"
	defaultTrashMaxBytes       = 1024 * 1024
	defaultMicroMaxFiles       = 5
	defaultMicroDir            = "!SmallFileCount"
	defaultWhitelistFile       = "cleanup_whitelist.json"
	defaultDedupeDBFile        = "md5s.sqlite"
	defaultBackupDir           = "backups"
	defaultLogFormat           = "console"
	defaultLogLevel            = "info"
)

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		Paths: Paths{
			StateDir: defaultStateDir,
			LogDir:   defaultLogDir,
			TrashDir: defaultTrashDir,
		},
		Library: Library{
			NewDir:        defaultNewDir,
			KnownNamesDir: defaultKnownNamesDir,
			ExcludedDirs:  []string{"!Htai", "!new"},
			OthersDirs:    []string{"!Others", "!Other"},
			CensoredTag:   defaultCensoredTag,
		},
		Matching: Matching{
			SimilarityThreshold: defaultSimilarityThreshold,
			PairListFile:        defaultPairListFile,
		},
		Blacklist: Blacklist{
			File:            defaultBlacklistFile,
			Keywords:        []string{"voice_actor", "voiceactor", "voice-actor"},
			DefaultCategory: defaultBlacklistCategory,
		},
		Cleanup: Cleanup{
			TrashHashes:   []string{"b325d6ba8efb828686667aa58ab549e8"},
			TrashMaxBytes: defaultTrashMaxBytes,
			MicroMaxFiles: defaultMicroMaxFiles,
			MicroDir:      defaultMicroDir,
			MicroExclude:  []string{"!new", defaultMicroDir},
			FindExclude:   []string{"!new"},
			WhitelistFile: defaultWhitelistFile,
			UseTrash:      true,
			TrashTarget:   TrashTargetSystem,
		},
		Dedupe: Dedupe{
			DBPath:         defaultDedupeDBFile,
			BackupDir:      defaultBackupDir,
			SkipExtensions: []string{".lnk"},
		},
		Logging: Logging{
			Format: defaultLogFormat,
			Level:  defaultLogLevel,
		},
	}
}
