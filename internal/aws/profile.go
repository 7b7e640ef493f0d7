package aws

import (
	"bufio"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strings"
)

// Profile is a named profile from the shared config or credentials file
type Profile struct {
	Name   string
	Region string
	Source string // "config" or "credentials"
}

var (
	credentialsSectionRe = regexp.MustCompile(`^\[([^\]]+)\]$`)
	configSectionRe      = regexp.MustCompile(`^\[profile\s+([^\]]+)\]$`)
	configDefaultRe      = regexp.MustCompile(`^\[default\]$`)
	regionRe             = regexp.MustCompile(`^\s*region\s*=\s*(.+)$`)
)

// ListProfiles reads the profiles from the shared credentials and config
// files, honouring AWS_SHARED_CREDENTIALS_FILE and AWS_CONFIG_FILE.
// "default" sorts first. Missing files contribute no profiles.
func ListProfiles() []Profile {
	profileMap := make(map[string]*Profile)

	credProfiles, _ := parseINIFile(sharedFilePath("AWS_SHARED_CREDENTIALS_FILE", "credentials"), "credentials", false)
	for i := range credProfiles {
		profileMap[credProfiles[i].Name] = &credProfiles[i]
	}

	// The config file may add region info or new profiles (SSO profiles, etc.)
	configProfiles, _ := parseINIFile(sharedFilePath("AWS_CONFIG_FILE", "config"), "config", true)
	for i := range configProfiles {
		p := &configProfiles[i]
		if existing, ok := profileMap[p.Name]; ok {
			if existing.Region == "" {
				existing.Region = p.Region
			}
			continue
		}
		profileMap[p.Name] = p
	}

	profiles := make([]Profile, 0, len(profileMap))
	for _, p := range profileMap {
		profiles = append(profiles, *p)
	}

	sort.Slice(profiles, func(i, j int) bool {
		if profiles[i].Name == "default" {
			return true
		}
		if profiles[j].Name == "default" {
			return false
		}
		return profiles[i].Name < profiles[j].Name
	})

	return profiles
}

// FindProfile returns the named profile, or false if no shared file defines it
func FindProfile(name string) (Profile, bool) {
	for _, p := range ListProfiles() {
		if p.Name == name {
			return p, true
		}
	}
	return Profile{}, false
}

func sharedFilePath(env, name string) string {
	if path := os.Getenv(env); path != "" {
		return path
	}

	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(".aws", name)
	}
	return filepath.Join(home, ".aws", name)
}

// parseINIFile parses an AWS INI-style shared file. Config files name their
// sections [profile name] (or [default]), credentials files just [name].
func parseINIFile(path, source string, isConfigFile bool) ([]Profile, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	var profiles []Profile
	var current *Profile

	startSection := func(name string) {
		if current != nil {
			profiles = append(profiles, *current)
		}
		current = &Profile{Name: strings.TrimSpace(name), Source: source}
	}

	scanner := bufio.NewScanner(file)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())

		// Skip empty lines and comments
		if line == "" || strings.HasPrefix(line, "#") || strings.HasPrefix(line, ";") {
			continue
		}

		if isConfigFile {
			if configDefaultRe.MatchString(line) {
				startSection("default")
				continue
			}
			if matches := configSectionRe.FindStringSubmatch(line); len(matches) == 2 {
				startSection(matches[1])
				continue
			}
			if strings.HasPrefix(line, "[") {
				// sso-session and services sections are not profiles
				if current != nil {
					profiles = append(profiles, *current)
				}
				current = nil
				continue
			}
		} else if matches := credentialsSectionRe.FindStringSubmatch(line); len(matches) == 2 {
			startSection(matches[1])
			continue
		}

		if current != nil {
			if matches := regionRe.FindStringSubmatch(line); len(matches) == 2 {
				current.Region = strings.TrimSpace(matches[1])
			}
		}
	}

	// Don't forget the last profile
	if current != nil {
		profiles = append(profiles, *current)
	}

	if err := scanner.Err(); err != nil {
		return nil, err
	}

	return profiles, nil
}
