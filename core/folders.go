package core

import (
	"fmt"
	"os"
	"path/filepath"

	"valugen/config"
)

// FolderTree reports what a folder scaffold run produced.
type FolderTree struct {
	Root             string
	SubFolders       []string
	LocationsCreated int
	PlatesCreated    int
}

// FolderBuilder lays out the deliverable directory skeleton for one job: the
// profile's main folders, then one numbered directory per location with a
// plate directory per asset inside it.
type FolderBuilder struct {
	profile *config.TemplateProfile
}

func NewFolderBuilder(profile *config.TemplateProfile) *FolderBuilder {
	return &FolderBuilder{profile: profile}
}

func (b *FolderBuilder) Create(basePath, folderName string, table *AssetTable) (*FolderTree, error) {
	root := filepath.Join(basePath, folderName)
	if err := os.MkdirAll(root, 0o755); err != nil {
		return nil, fmt.Errorf("create job root: %w", err)
	}

	tree := &FolderTree{Root: root}
	for _, name := range b.profile.MainFolders {
		dir := filepath.Join(root, name)
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create folder %s: %w", name, err)
		}
		tree.SubFolders = append(tree.SubFolders, dir)
	}

	locationRoot := root
	if len(tree.SubFolders) > 0 {
		locationRoot = tree.SubFolders[0]
		if i := b.profile.LocationFolderIndex; i >= 0 && i < len(tree.SubFolders) {
			locationRoot = tree.SubFolders[i]
		}
	}

	for locIdx, loc := range table.Locations() {
		locationDir := filepath.Join(locationRoot, fmt.Sprintf("%d- %s", locIdx+1, loc.Name))
		if err := os.MkdirAll(locationDir, 0o755); err != nil {
			return nil, fmt.Errorf("create location folder %s: %w", loc.Name, err)
		}
		tree.LocationsCreated++

		for plateIdx, plate := range loc.Plates {
			prefix := plate.Number
			if prefix == "" {
				prefix = fmt.Sprintf("%d", plateIdx+1)
			}
			plateDir := filepath.Join(locationDir, fmt.Sprintf("%s- %s", prefix, plate.Name))
			if err := os.MkdirAll(plateDir, 0o755); err != nil {
				return nil, fmt.Errorf("create plate folder %s: %w", plate.Name, err)
			}
			tree.PlatesCreated++
		}
	}

	return tree, nil
}

// DocxTargetDir is where generated reports and the calc workbook live.
func (b *FolderBuilder) DocxTargetDir(basePath, folderName string) string {
	root := filepath.Join(basePath, folderName)
	if i := b.profile.CalcFolderIndex; i >= 0 && i < len(b.profile.MainFolders) {
		return filepath.Join(root, b.profile.MainFolders[i])
	}
	return root
}

// PreviewRootDir holds the photographed assets, one directory per location.
func (b *FolderBuilder) PreviewRootDir(basePath, folderName string) string {
	root := filepath.Join(basePath, folderName)
	if i := b.profile.LocationFolderIndex; i >= 0 && i < len(b.profile.MainFolders) {
		return filepath.Join(root, b.profile.MainFolders[i])
	}
	return root
}
