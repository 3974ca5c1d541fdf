// Package entitydef loads the per-version entity catalog from definition files.
//
// A definitions root holds one directory per game version:
//
//	<root>/0_10_8/scripts/entities.xml
//	<root>/0_10_8/scripts/entity_defs/alias.xml
//	<root>/0_10_8/scripts/entity_defs/<Entity>.def
//	<root>/0_10_8/scripts/entity_defs/interfaces/<Interface>.def
//
// entities.xml lists the entities under ClientServerEntities; that order is
// the entity type id order used in replays (id = index + 1). Property and
// method types are compiled with package schema against alias.xml plus the
// optional Aliases section of the entity's own .def file.
//
// Methods of every realm and the internal client properties are ordered by
// their static argument size, which is the index order the game uses on the
// wire.
package entitydef
