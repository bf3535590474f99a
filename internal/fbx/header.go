package fbx

const sectionRule = ";------------------------------------------------------------------\n"

func (w *writer) header() {
	t := w.opts.Time
	w.str("; FBX 7.3.0 project file\n")
	w.str("; ----------------------------------------------------\n\n")
	w.printf(`FBXHeaderExtension:  {
	FBXHeaderVersion: 1003
	FBXVersion: 7300
	CreationTimeStamp:  {
		Version: 1000
		Year: %04d
		Month: %02d
		Day: %02d
		Hour: %02d
		Minute: %02d
		Second: %02d
		Millisecond: 0
	}`, t.Year(), int(t.Month()), t.Day(), t.Hour(), t.Minute(), t.Second())
	w.printf("\n\tCreator: %q", w.opts.Creator)
	w.str(`
	SceneInfo: "SceneInfo::GlobalInfo", "UserData" {
		Type: "UserData"
		Version: 100
		MetaData:  {
			Version: 100
			Title: ""
			Subject: ""
			Author: ""
			Keywords: ""
			Revision: ""
			Comment: ""
		}
		Properties70:  {`)
	w.printf("\n\t\t\tP: \"DocumentUrl\", \"KString\", \"Url\", \"\", \"%s\"", w.opts.Path)
	w.printf("\n\t\t\tP: \"SrcDocumentUrl\", \"KString\", \"Url\", \"\", \"%s\"", w.opts.Path)
	stamp := t.UTC().Format("02/01/2006 15:04:05.000")
	w.printf(`
			P: "Original", "Compound", "", ""
			P: "Original|ApplicationVendor", "KString", "", "", ""
			P: "Original|ApplicationName", "KString", "", "", "fbxport"
			P: "Original|ApplicationVersion", "KString", "", "", ""
			P: "Original|DateTime_GMT", "DateTime", "", "", ""
			P: "Original|FileName", "KString", "", "", ""
			P: "LastSaved", "Compound", "", ""
			P: "LastSaved|ApplicationVendor", "KString", "", "", ""
			P: "LastSaved|ApplicationName", "KString", "", "", "fbxport"
			P: "LastSaved|ApplicationVersion", "KString", "", "", ""
			P: "LastSaved|DateTime_GMT", "DateTime", "", "", "%s"
		}
	}`, stamp)
	w.str("\n}\n")
}

func (w *writer) globalSettings() {
	w.str(`GlobalSettings:  {
	Version: 1000
	Properties70:  {
		P: "UpAxis", "int", "Integer", "",1
		P: "UpAxisSign", "int", "Integer", "",1
		P: "FrontAxis", "int", "Integer", "",2
		P: "FrontAxisSign", "int", "Integer", "",1
		P: "CoordAxis", "int", "Integer", "",0
		P: "CoordAxisSign", "int", "Integer", "",1
		P: "OriginalUpAxis", "int", "Integer", "",-1
		P: "OriginalUpAxisSign", "int", "Integer", "",1
		P: "UnitScaleFactor", "double", "Number", "",1
		P: "OriginalUnitScaleFactor", "double", "Number", "",1
		P: "AmbientColor", "ColorRGB", "Color", "",0,0,0
		P: "DefaultCamera", "KString", "", "", "Producer Perspective"
		P: "TimeMode", "enum", "", "",11
		P: "TimeSpanStart", "KTime", "Time", "",0
		P: "TimeSpanStop", "KTime", "Time", "",44261734750
		P: "CustomFrameRate", "double", "Number", "",-1
	}
}

`)
}

func (w *writer) documents() {
	active := ""
	if len(w.doc.Anim.Takes) > 0 {
		active = w.doc.Anim.Current
	}
	w.str("; Documents Description\n" + sectionRule + "\n")
	w.str("Documents:  {\n\tCount: 1\n")
	w.str("\tDocument: 10, \"\", \"Scene\" {\n")
	w.str("\t\tProperties70:  {\n")
	w.str("\t\t\tP: \"SourceObject\", \"object\", \"\", \"\"\n")
	w.printf("\t\t\tP: \"ActiveAnimStackName\", \"KString\", \"\", \"\", \"%s\"\n", active)
	w.str("\t\t}\n\t\tRootNode: 0\n\t}\n}\n\n")
}

func (w *writer) references() {
	w.str("; Document References\n" + sectionRule + "\nReferences:\t{\n}")
}
