package assets

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/spaghettifunk/prism/engine/assets/loaders"
	"github.com/spaghettifunk/prism/engine/core"
	"github.com/spaghettifunk/prism/engine/renderer/metadata"
)

type AssetInfo struct {
	Path       string
	Type       metadata.ResourceType
	LastLoaded time.Time
}

// AssetManager indexes the shader directory, loads resources through the
// registered loaders and, when watching, reports shader templates whose
// binaries changed on disk.
type AssetManager struct {
	shaderPath string
	assets     map[string]AssetInfo
	loaders    map[metadata.ResourceType]Loader

	mutex sync.RWMutex

	done     chan struct{}
	stopped  chan struct{}
	fsnotify *fsnotify.Watcher
	isClosed bool
	changed  chan string
}

func NewAssetManager(shaderPath string) *AssetManager {
	am := &AssetManager{
		shaderPath: shaderPath,
		assets:     make(map[string]AssetInfo),
		loaders:    make(map[metadata.ResourceType]Loader),
		changed:    make(chan string, 64),
	}
	am.registerLoader(metadata.ResourceTypeShader, &loaders.ShaderLoader{})
	am.registerLoader(metadata.ResourceTypeImage, &loaders.ImageLoader{})
	am.registerLoader(metadata.ResourceTypeBinary, &loaders.BinaryLoader{})
	return am
}

// Initialize indexes the shader directory and, if watch is set, starts
// watching it for changes.
func (am *AssetManager) Initialize(watch bool) error {
	if _, err := os.Stat(am.shaderPath); err != nil {
		err := fmt.Errorf("shader path %s: %w", am.shaderPath, err)
		core.LogError(err.Error())
		return err
	}
	if !watch {
		return am.index(am.shaderPath)
	}

	fsWatch, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	am.fsnotify = fsWatch
	am.done = make(chan struct{})
	am.stopped = make(chan struct{})
	go am.start()

	return am.addRecursive(am.shaderPath)
}

func (am *AssetManager) Shutdown() error {
	if am.fsnotify == nil || am.isClosed {
		return nil
	}
	am.isClosed = true
	close(am.done)
	<-am.stopped
	return nil
}

// AddRecursive starts watching the named directory and all sub-directories.
func (am *AssetManager) addRecursive(name string) error {
	if am.isClosed {
		return errors.New("asset watcher already closed")
	}
	return am.watchRecursive(name, false)
}

// Register loaders for each asset type
func (am *AssetManager) registerLoader(assetType metadata.ResourceType, loader Loader) {
	am.loaders[assetType] = loader
}

// LoadAsset loads path with the loader registered for resourceType.
func (am *AssetManager) LoadAsset(path string, resourceType metadata.ResourceType, params interface{}) (*metadata.Resource, error) {
	loader, loaderExists := am.loaders[resourceType]
	if !loaderExists {
		return nil, fmt.Errorf("no loader registered for asset type: %d", resourceType)
	}
	res, err := loader.Load(path, resourceType, params)
	if err != nil {
		return nil, err
	}
	res.Type = resourceType

	am.mutex.Lock()
	am.assets[path] = AssetInfo{Path: path, Type: resourceType, LastLoaded: time.Now()}
	am.mutex.Unlock()
	return res, nil
}

// LoadImageMemory decodes an encoded image held in memory.
func (am *AssetManager) LoadImageMemory(encoded []byte, params *metadata.ImageResourceParams) (*metadata.Resource, error) {
	res, err := am.loaders[metadata.ResourceTypeImage].(*loaders.ImageLoader).LoadMemory(encoded, params)
	if err != nil {
		return nil, err
	}
	res.Type = metadata.ResourceTypeImage
	return res, nil
}

// UnloadAsset releases the resource data through its loader. Files outside
// the shader directory are also dropped from the index; watched files stay.
func (am *AssetManager) UnloadAsset(asset *metadata.Resource) error {
	if asset == nil {
		return fmt.Errorf("cannot unload a nil asset")
	}
	loader, ok := am.loaders[asset.Type]
	if !ok {
		return fmt.Errorf("no loader registered for asset type: %d", asset.Type)
	}
	if err := loader.Unload(asset); err != nil {
		return err
	}
	if asset.FullPath != "" && !am.watched(asset.FullPath) {
		am.removeAsset(asset.FullPath)
	}
	return nil
}

func (am *AssetManager) watched(path string) bool {
	rel, err := filepath.Rel(am.shaderPath, path)
	return err == nil && rel != ".." && !strings.HasPrefix(rel, ".."+string(filepath.Separator))
}

// LoadShaderTemplate reads <shaderPath>/<name>_vert.spv and <name>_frag.spv.
func (am *AssetManager) LoadShaderTemplate(name string) ([]byte, []byte, error) {
	var stages [2][]byte
	for i, stage := range []string{"vert", "frag"} {
		path := filepath.Join(am.shaderPath, loaders.StageFileName(name, stage))
		res, err := am.LoadAsset(path, metadata.ResourceTypeShader, nil)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to load shader template %s: %w", name, err)
		}
		stages[i] = res.Data.([]byte)
	}
	return stages[0], stages[1], nil
}

// ChangedShaderTemplates drains the template names changed since the last call.
func (am *AssetManager) ChangedShaderTemplates() []string {
	seen := make(map[string]struct{})
	var out []string
	for {
		select {
		case name := <-am.changed:
			if _, ok := seen[name]; !ok {
				seen[name] = struct{}{}
				out = append(out, name)
			}
		default:
			return out
		}
	}
}

func (am *AssetManager) start() {
	defer close(am.stopped)
	for {
		select {
		case e, ok := <-am.fsnotify.Events:
			if !ok {
				return
			}
			s, err := os.Stat(e.Name)
			if err == nil && s != nil && s.IsDir() {
				if e.Op&fsnotify.Create != 0 {
					if err := am.watchRecursive(e.Name, false); err != nil {
						core.LogWarn("failed to watch %s: %s", e.Name, err)
					}
				}
			}
			if e.Op&(fsnotify.Create|fsnotify.Write) != 0 {
				am.handleFileEvent(e.Name, true)
			}
			if e.Op&fsnotify.Remove != 0 {
				am.removeAsset(e.Name)
			}

		case err, ok := <-am.fsnotify.Errors:
			if !ok {
				return
			}
			core.LogError(err.Error())

		case <-am.done:
			am.fsnotify.Close()
			return
		}
	}
}

// watchRecursive adds all directories under the given one to the watch list.
func (am *AssetManager) watchRecursive(path string, unWatch bool) error {
	return filepath.Walk(path, func(walkPath string, fi os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if fi.IsDir() {
			if unWatch {
				return am.fsnotify.Remove(walkPath)
			}
			return am.fsnotify.Add(walkPath)
		}
		am.handleFileEvent(walkPath, false)
		return nil
	})
}

func (am *AssetManager) index(path string) error {
	return filepath.Walk(path, func(walkPath string, fi os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if !fi.IsDir() {
			am.handleFileEvent(walkPath, false)
		}
		return nil
	})
}

// Handle the creation or modification of a file
func (am *AssetManager) handleFileEvent(path string, notify bool) {
	assetType := determineAssetType(path)
	if assetType == metadata.ResourceTypeNone {
		return
	}
	am.mutex.Lock()
	am.assets[path] = AssetInfo{
		Path:       path,
		Type:       assetType,
		LastLoaded: time.Now(),
	}
	am.mutex.Unlock()

	if !notify || assetType != metadata.ResourceTypeShader {
		return
	}
	if name, ok := templateName(path); ok {
		select {
		case am.changed <- name:
		default:
			core.LogWarn("shader change queue full, dropping %s", name)
		}
	}
}

// Remove the asset from the index if it was deleted
func (am *AssetManager) removeAsset(path string) {
	am.mutex.Lock()
	defer am.mutex.Unlock()

	delete(am.assets, path)
}

// Indexed reports whether path has been seen by the manager.
func (am *AssetManager) Indexed(path string) bool {
	am.mutex.RLock()
	defer am.mutex.RUnlock()
	_, ok := am.assets[path]
	return ok
}

func templateName(path string) (string, bool) {
	base := strings.TrimSuffix(filepath.Base(path), ".spv")
	for _, suffix := range []string{"_vert", "_frag"} {
		if strings.HasSuffix(base, suffix) {
			return strings.TrimSuffix(base, suffix), true
		}
	}
	return "", false
}

func determineAssetType(path string) metadata.ResourceType {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".spv":
		return metadata.ResourceTypeShader
	case ".png", ".jpg", ".jpeg", ".gif", ".bmp", ".tif", ".tiff", ".webp":
		return metadata.ResourceTypeImage
	case ".bin", ".raw":
		return metadata.ResourceTypeBinary
	default:
		return metadata.ResourceTypeNone
	}
}
