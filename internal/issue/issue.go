// SPDX-License-Identifier: EPL-2.0

package issue

import (
	"github.com/charmbracelet/glamour"
	"golang.org/x/exp/maps"
	"golang.org/x/exp/slices"
)

type Id int

const (
	LockFileNotFoundId Id = iota + 1
	LockFileParseErrorId
	DependencyCycleId
	CompileOutputMissingId
	SourceMergeFailedId
	JarWriteFailedId
	ConfigLoadFailedId
	PermissionDeniedId
)

type MarkdownMsg string

type HttpLink string

type Renderer interface {
	Render(in string, stylePath string) (string, error)
}

type Issue struct {
	id       Id          // ID used to lookup the issue
	mdMsg    MarkdownMsg // Markdown text that will be rendered
	docLinks []HttpLink  // must never be empty, because we need to have docs about all issue types
	extLinks []HttpLink  // external links that might be useful for the user
}

func (i *Issue) Id() Id {
	return i.id
}

func (i *Issue) MarkdownMsg() MarkdownMsg {
	return i.mdMsg
}

func (i *Issue) DocLinks() []HttpLink {
	return slices.Clone(i.docLinks)
}

func (i *Issue) ExtLinks() []HttpLink {
	return slices.Clone(i.extLinks)
}

func (i *Issue) Render(stylePath string) (string, error) {
	extraMd := ""
	if len(i.docLinks) > 0 || len(i.extLinks) > 0 {
		extraMd += "\n\n"
		extraMd += "## See also: "
		for _, link := range i.docLinks {
			extraMd += "- [" + string(link) + "]"
		}
		for _, link := range i.extLinks {
			extraMd += "- [" + string(link) + "]"
		}
	}
	return render(string(i.mdMsg)+extraMd, stylePath)
}

var (
	render = glamour.Render

	lockFileNotFoundIssue = &Issue{
		id: LockFileNotFoundId,
		mdMsg: `
# No lock file found!

We searched for a ujar.lock.cue but couldn't find one in the expected locations.

## Search locations (in order of precedence):
1. The path given via --lock-file
2. Current directory

## Things you can try:
- Run your dependency resolver so it regenerates the lock file
- Point at an explicit lock file:
~~~
$ ujar uber --lock-file path/to/ujar.lock.cue
~~~

## Example lock file structure:
~~~cue
version: "1"

libraries: {
  "org.clojure/clojure": {
    version: "1.11.1"
    paths: ["/repo/org/clojure/clojure/1.11.1/clojure-1.11.1.jar"]
  }
}
~~~`,
	}

	lockFileParseErrorIssue = &Issue{
		id: LockFileParseErrorId,
		mdMsg: `
# Failed to parse lock file!

Your ujar.lock.cue contains syntax errors or invalid configuration.

## Common issues:
- Invalid CUE syntax (missing quotes, braces, etc.)
- Unknown field names
- Missing required fields (version, paths per library)
- An empty paths list for a library

## Things you can try:
- Check the error message above for the specific field
- Regenerate the file with your dependency resolver
- Run with verbose mode for more details:
~~~
$ ujar --verbose uber
~~~`,
	}

	dependencyCycleIssue = &Issue{
		id: DependencyCycleId,
		mdMsg: `
# Dependency cycle detected!

The dependent relation in your lock file forms a cycle, so the optional
pruner cannot reach a fixed point.

## Example of a cycle:
~~~cue
libraries: {
  "a/a": {dependents: ["b/b"], ...}
  "b/b": {dependents: ["a/a"], ...}  // Cycle: a -> b -> a
}
~~~

## Things you can try:
- Review the dependents fields in your lock file
- Regenerate the file with your dependency resolver
- Remove the circular entry by hand if the file was edited manually`,
	}

	compileOutputMissingIssue = &Issue{
		id: CompileOutputMissingId,
		mdMsg: `
# Compiled output not found!

The configured compile path does not exist, so there is no project code to
put into the archive.

## Things you can try:
- Compile your project first, then re-run the assembly
- Check the compile path setting:
~~~
$ ujar uber --compile-path target/classes
~~~

- Or drop the flag to assemble libraries only`,
	}

	sourceMergeFailedIssue = &Issue{
		id: SourceMergeFailedId,
		mdMsg: `
# Failed to merge a source!

One of the library jars or directories could not be merged into the
working tree.

## Common causes:
- A lock file path that no longer exists on disk
- A corrupted jar in the local repository
- A malformed data_readers.clj in one of the libraries
- An archive entry that tries to escape the working directory

## Things you can try:
- Re-fetch your dependencies so the local repository is intact
- Inspect the offending jar:
~~~
$ unzip -l path/to/the.jar
~~~

- Run with verbose mode to see which entries collide:
~~~
$ ujar --verbose uber
~~~`,
	}

	jarWriteFailedIssue = &Issue{
		id: JarWriteFailedId,
		mdMsg: `
# Failed to write the output jar!

The merged tree could not be packaged into the target archive.

## Common causes:
- The target directory is not writable
- The disk is full
- Another process holds the target file open

## Things you can try:
- Check free space and permissions on the target directory
- Choose a different target:
~~~
$ ujar uber --target-path /tmp/app-standalone.jar
~~~`,
	}

	configLoadFailedIssue = &Issue{
		id: ConfigLoadFailedId,
		mdMsg: `
# Failed to load configuration!

Could not load the ujar configuration file.

## Configuration file locations:
- Linux: ~/.config/ujar/config.cue
- macOS: ~/Library/Application Support/ujar/config.cue
- Windows: %APPDATA%\ujar\config.cue

## Things you can try:
- Check the configuration syntax
- Remove the config file to use defaults:
~~~
$ rm ~/.config/ujar/config.cue
~~~

## Example configuration:
~~~cue
uberjar: {
  target_path:  "target/app-standalone.jar"
  compile_path: "target/classes"
  main:         "my-app.core"
}

ui: {
  verbose: false
}
~~~`,
	}

	permissionDeniedIssue = &Issue{
		id: PermissionDeniedId,
		mdMsg: `
# Permission denied!

You don't have permission to perform this operation.

## Common causes:
- Trying to write the target jar to a protected directory
- A library path under a directory you cannot read
- The temp directory is not writable

## Things you can try:
- Check file/directory permissions on the target and the local repository
- Point TMPDIR at a writable location
- Run ujar from a directory you own`,
	}

	issues = map[Id]*Issue{
		lockFileNotFoundIssue.Id():     lockFileNotFoundIssue,
		lockFileParseErrorIssue.Id():   lockFileParseErrorIssue,
		dependencyCycleIssue.Id():      dependencyCycleIssue,
		compileOutputMissingIssue.Id(): compileOutputMissingIssue,
		sourceMergeFailedIssue.Id():    sourceMergeFailedIssue,
		jarWriteFailedIssue.Id():       jarWriteFailedIssue,
		configLoadFailedIssue.Id():     configLoadFailedIssue,
		permissionDeniedIssue.Id():     permissionDeniedIssue,
	}
)

func Values() []*Issue {
	return maps.Values(issues)
}

func Get(id Id) *Issue {
	return issues[id]
}
