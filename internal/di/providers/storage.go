package providers

import (
	"github.com/samber/do/v2"

	"github.com/promptvault/promptvault-server/internal/config"
	"github.com/promptvault/promptvault-server/internal/logger"
	"github.com/promptvault/promptvault-server/internal/storage"
)

// objectsBaseURL is the path prefix signed image URLs resolve under.
const objectsBaseURL = "/api/v1/objects"

// ProvideSigner provides the object grant signer. It shares the auth
// key so grants are invalidated together with access tokens.
func ProvideSigner(i do.Injector) (*storage.Signer, error) {
	authKey := do.MustInvoke[AuthKey](i)
	return storage.NewSigner([]byte(authKey))
}

// ObjectStoreHandle wraps the disk object store.
type ObjectStoreHandle struct {
	*storage.DiskStore
}

// ProvideObjectStore provides the private image object store.
func ProvideObjectStore(i do.Injector) (*ObjectStoreHandle, error) {
	cfg := do.MustInvoke[*config.Config](i)
	log := do.MustInvoke[*logger.Logger](i)
	signer := do.MustInvoke[*storage.Signer](i)

	store, err := storage.NewDiskStore(cfg.ObjectsPath(), objectsBaseURL, signer)
	if err != nil {
		return nil, err
	}

	log.Info("Object store initialized", "path", cfg.ObjectsPath())

	return &ObjectStoreHandle{DiskStore: store}, nil
}

// ProvideResolver provides the image URL resolver.
func ProvideResolver(i do.Injector) (*storage.Resolver, error) {
	objects := do.MustInvoke[*ObjectStoreHandle](i)
	log := do.MustInvoke[*logger.Logger](i)

	return storage.NewResolver(objects.DiskStore, log.Logger), nil
}
