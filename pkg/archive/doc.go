// Package archive inspects downloaded artifacts.
//
// Every mirrored artifact is treated as a zip container. [Classify] maps the
// container's entry listing to a [Type] with a fixed priority:
//
//  1. an Android manifest or dex entry at the root: [TypeAPK]
//  2. a module.prop descriptor at the root: [TypeModule]
//  3. anything else: [TypeTWRP]
//
// TWRP is the fallback, not a positive detection. An apk that also ships a
// module.prop is still an apk.
//
// Inspection is split into two capabilities so each can be swapped
// independently: a [Lister] enumerates entries and a [PackageReader] recovers
// the Android package identifier. [ZipLister] and [NativePackageReader] read
// the archive in-process; [AaptPackageReader] shells out to the aapt tool.
package archive
