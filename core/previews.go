package core

import (
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// Photographed previews arrive in at most this many files per asset folder.
const previewImageCap = 60

var imageExtensions = map[string]bool{
	".png":  true,
	".jpg":  true,
	".jpeg": true,
	".webp": true,
	".bmp":  true,
}

func isImageFile(name string) bool {
	return imageExtensions[strings.ToLower(filepath.Ext(name))]
}

// collectImageFiles walks a directory tree for image files, up to maxFiles,
// sorted by base name with numeric awareness so "img2" precedes "img10".
// Unreadable directories are skipped.
func collectImageFiles(dir string, maxFiles int) []string {
	var out []string
	var visit func(p string)
	visit = func(p string) {
		if len(out) >= maxFiles {
			return
		}
		entries, err := os.ReadDir(p)
		if err != nil {
			return
		}
		for _, ent := range entries {
			if len(out) >= maxFiles {
				break
			}
			full := filepath.Join(p, ent.Name())
			if ent.IsDir() {
				visit(full)
			} else if isImageFile(ent.Name()) {
				out = append(out, full)
			}
		}
	}
	visit(dir)
	sort.Slice(out, func(i, j int) bool {
		return naturalLess(filepath.Base(out[i]), filepath.Base(out[j]))
	})
	return out
}

// CollectPreviewSets maps each asset folder under the preview root to its
// image files. The layout is previewRoot/location/asset/...; keys are the
// normalized asset folder names, so they match report base names regardless
// of case or spacing.
func CollectPreviewSets(previewRoot string) (map[string][]string, error) {
	locationDirs, err := os.ReadDir(previewRoot)
	if err != nil {
		return nil, err
	}

	sets := make(map[string][]string)
	for _, loc := range locationDirs {
		if !loc.IsDir() {
			continue
		}
		assetDirs, err := os.ReadDir(filepath.Join(previewRoot, loc.Name()))
		if err != nil {
			continue
		}
		for _, asset := range assetDirs {
			if !asset.IsDir() {
				continue
			}
			key := normalizeKey(asset.Name())
			if key == "" {
				continue
			}
			images := collectImageFiles(filepath.Join(previewRoot, loc.Name(), asset.Name()), previewImageCap)
			if len(images) == 0 {
				continue
			}
			sets[key] = images
		}
	}
	return sets, nil
}

// LoadPreviewImages reads a set of image paths into gallery entries, skipping
// unreadable files.
func LoadPreviewImages(paths []string) []PreviewImage {
	out := make([]PreviewImage, 0, len(paths))
	for _, p := range paths {
		data, err := os.ReadFile(p)
		if err != nil {
			continue
		}
		out = append(out, PreviewImage{Name: filepath.Base(p), Data: data})
	}
	return out
}
