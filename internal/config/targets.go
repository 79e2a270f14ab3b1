package config

import (
	"os"

	"github.com/rotisserie/eris"
	"gopkg.in/yaml.v3"
)

// TargetsFile is a standalone YAML document holding only source target lists.
// Operators maintain group/query lists separately from the main config;
// anything present in the file replaces the corresponding config list.
type TargetsFile struct {
	Reddit      *RedditConfig      `yaml:"reddit"`
	Classifieds *ClassifiedsConfig `yaml:"classifieds"`
	Search      *SearchConfig      `yaml:"search"`
	Facebook    *FacebookConfig    `yaml:"facebook"`
}

// LoadTargets reads a targets file and merges it over the source config.
func LoadTargets(path string, into *SourcesConfig) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return eris.Wrapf(err, "targets: read %s", path)
	}

	var tf TargetsFile
	if err := yaml.Unmarshal(data, &tf); err != nil {
		return eris.Wrapf(err, "targets: parse %s", path)
	}

	if tf.Reddit != nil {
		merge(&into.Reddit.Subreddits, tf.Reddit.Subreddits)
		merge(&into.Reddit.Keywords, tf.Reddit.Keywords)
		if tf.Reddit.PostLimit > 0 {
			into.Reddit.PostLimit = tf.Reddit.PostLimit
		}
	}
	if tf.Classifieds != nil {
		merge(&into.Classifieds.Cities, tf.Classifieds.Cities)
		merge(&into.Classifieds.Queries, tf.Classifieds.Queries)
	}
	if tf.Search != nil {
		merge(&into.Search.Queries, tf.Search.Queries)
	}
	if tf.Facebook != nil {
		merge(&into.Facebook.Groups, tf.Facebook.Groups)
		merge(&into.Facebook.Keywords, tf.Facebook.Keywords)
	}
	return nil
}

func merge(dst *[]string, src []string) {
	if len(src) > 0 {
		*dst = src
	}
}
