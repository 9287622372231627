// Package repository keeps one local mirror per project of a release train
// and reads tags and branches back from those mirrors.
//
// The Synchronizer never pushes, tags or otherwise writes to a remote. When a
// project's remote URL changes, the next fetch repoints the mirror's origin. Clone
// and fetch work is delegated to a Transport: GoGitTransport runs go-git
// against a billy-backed native filesystem, CLITransport shells out to the git binary.
//
// Basic usage:
//
//	resolver, _ := timeline.NewResolver(registry)
//	mirrors := fsb.NewOSFS(workspace)
//	sync, err := repository.New(mirrors,
//		repository.NewGoGitTransport(mirrors),
//		repository.RemoteBase("https://github.com/example"),
//		resolver,
//		repository.WithConcurrency(4),
//	)
//	result, err := sync.Update(ctx, registry.MustTrain("Hopper"))
//	for _, o := range result.Failed() {
//		log.Printf("%s: %v", o.Project, o.Err)
//	}
package repository
