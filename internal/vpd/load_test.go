package vpd_test

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"vpdkit/internal/faults"
	"vpdkit/internal/testsupport"
	"vpdkit/internal/vpd"
)

func sampleBuilder() *testsupport.ManifestBuilder {
	return testsupport.NewManifest().
		AddImage("AAAA1111", "/media/photo.jpg", "photo").
		AddImageLink("LINK0001", "AAAA1111").
		AddTrack("Video Track", testsupport.BlockSpec{
			Type: "ImageFileBlock", ResID: "LINK0001", Start: 0, Duration: 3,
		})
}

func TestResolveProjectFromFolder(t *testing.T) {
	dir := t.TempDir()
	project := sampleBuilder().WriteProject(t, dir, "Holiday")

	if project.Name != "Holiday" {
		t.Fatalf("name = %q", project.Name)
	}
	if filepath.Base(project.Folder) != "Holiday.dvp" {
		t.Fatalf("folder = %q", project.Folder)
	}
	if filepath.Base(project.ManifestPath) != "Holiday.vpd" {
		t.Fatalf("manifest = %q", project.ManifestPath)
	}
}

func TestResolveProjectFromManifestPath(t *testing.T) {
	dir := t.TempDir()
	seeded := sampleBuilder().WriteProject(t, dir, "Holiday")

	project, warning, err := vpd.ResolveProject(seeded.ManifestPath)
	if err != nil {
		t.Fatalf("ResolveProject: %v", err)
	}
	if warning != "" {
		t.Fatalf("unexpected warning %q", warning)
	}
	if project.Name != "Holiday" || project.Folder != seeded.Folder {
		t.Fatalf("project = %+v", project)
	}
}

func TestResolveProjectRejectsOtherPaths(t *testing.T) {
	dir := t.TempDir()
	other := filepath.Join(dir, "notes.txt")
	if err := os.WriteFile(other, []byte("x"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	_, _, err := vpd.ResolveProject(other)
	if !errors.Is(err, faults.ErrLoad) {
		t.Fatalf("expected ErrLoad, got %v", err)
	}
}

func TestLoadRejectsManifestWithoutTimeline(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "broken.vpd")
	if err := os.WriteFile(path, []byte(`{"imagelist": {}}`), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	_, err := vpd.Load(path)
	if !errors.Is(err, faults.ErrSchema) {
		t.Fatalf("expected ErrSchema, got %v", err)
	}
}

func TestLoadRejectsInvalidJSON(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "broken.vpd")
	if err := os.WriteFile(path, []byte("{nope"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	_, err := vpd.Load(path)
	if !errors.Is(err, faults.ErrLoad) {
		t.Fatalf("expected ErrLoad, got %v", err)
	}
}

func TestSetResourcePathSurvivesSave(t *testing.T) {
	dir := t.TempDir()
	project := sampleBuilder().WriteProject(t, dir, "Holiday")

	doc, err := vpd.Load(project.ManifestPath)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if !doc.SetResourcePath(vpd.KindImage, "AAAA1111", "/new/0001_photo.jpg", "0001_photo") {
		t.Fatal("SetResourcePath did not find the resource")
	}
	if doc.SetResourcePath(vpd.KindImage, "MISSING", "/x", "x") {
		t.Fatal("SetResourcePath matched a nonexistent uuid")
	}
	if err := doc.Save(project.ManifestPath); err != nil {
		t.Fatalf("Save: %v", err)
	}

	reloaded, err := vpd.Load(project.ManifestPath)
	if err != nil {
		t.Fatalf("reload: %v", err)
	}
	resources := reloaded.Resources(vpd.KindImage)
	if len(resources) != 1 {
		t.Fatalf("expected 1 image resource, got %d", len(resources))
	}
	if resources[0].Path != "/new/0001_photo.jpg" || resources[0].Title != "0001_photo" {
		t.Fatalf("resource not rewritten: %+v", resources[0])
	}
}

func TestBackupPathShape(t *testing.T) {
	dir := t.TempDir()
	project := sampleBuilder().WriteProject(t, dir, "Holiday")

	at := time.Date(2026, 3, 14, 15, 9, 26, 0, time.UTC)
	got := project.BackupPath(at)
	want := filepath.Join(dir, "Holiday.backup.20260314_150926.dvp")
	if got != want {
		t.Fatalf("BackupPath = %q, want %q", got, want)
	}
}
