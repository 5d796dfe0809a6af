// Package pkg holds the atlaspack libraries.
//
// # Overview
//
// Atlaspack packs many small images (sprites) into one atlas image without
// overlap and describes where each sprite ended up. The packages are:
//
//   - [geom], [pixel]: rectangles, sizes and the RGBA buffer sprites are drawn into
//   - [pack]: the packers, the sizing controller that grows the atlas, and compositing
//   - [sprite]: loading, trimming and naming sprite files
//   - [io]: XML and JSON descriptors
//   - [pipeline]: load, pack, composite and encode in one call, with layout caching
//   - [cache], [config], [errors], [observability]: supporting infrastructure
//   - [server]: the HTTP API
//
// # Data flow
//
//	files/dirs
//	    ↓  sprite.Collect, sprite.LoadAll
//	[]*sprite.Sprite
//	    ↓  pack.Sort, pack.Controller.Pack (cached by pipeline)
//	pack.Result{Size, Pieces}
//	    ↓  pack.Composite, io.NewDescriptor
//	atlas image + descriptor
//
// # Quick Start
//
//	runner := pipeline.NewRunner(cache.NewNullCache(), nil, nil)
//	defer runner.Close()
//
//	opts := pipeline.Options{
//	    Inputs:   []string{"sprites/"},
//	    Output:   "atlas.png",
//	    Resource: "atlas.xml",
//	    Padding:  1,
//	}
//	res, err := runner.Execute(ctx, opts)
//	if err != nil {
//	    return err
//	}
//	return pipeline.WriteFiles(res, opts)
package pkg
